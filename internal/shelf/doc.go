// Package shelf implements the view-controller of a catalog session.
//
// A Controller owns the fetched collection, the selected book, the active
// view mode, the loading flag and the last error. The UI reads it through
// Snapshot and drives it with the operations below.
//
//	Load            fetch the collection, once per session
//	SelectForView   mode=view, selected=book or nil
//	SelectForEdit   mode=edit, selected=book or nil
//	CreateNew       mode=edit, selected=nil
//	Delete          DELETE, then drop the entry and return to the list
//	Save            POST for catalog.NewBook, PUT for catalog.ExistingBook
//	GoBack          mode=list
//
// Every network operation clears the error when it starts and records the
// classified error when it fails; the collection is only changed by a
// successful call. Operations may run concurrently. Each outcome is applied
// under a single lock, so whichever resolves last determines the final state.
//
// Close ends the session: pending requests are cancelled and late results
// are discarded.
package shelf
