// Package forms holds one editing form per CV section.
//
// A form keeps a draft, reports inline field errors through the cv
// validators and only writes to the cv.Store once the draft is valid.
// Rejected drafts stay in the form together with their errors. List
// sections share ListForm, which adds Edit, Remove and Move on top of
// Submit. DecodePayload checks raw JSON against the embedded schemas
// before a payload reaches a form.
package forms
