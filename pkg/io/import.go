package io

import (
	"encoding/json"
	"io"

	derrors "github.com/matzehuels/depconv/pkg/errors"
	"github.com/matzehuels/depconv/pkg/project"
)

// ReadJSON decodes a document written by [WriteJSON].
//
// The normalized name and rendered requirement lines are ignored; they are
// derived from the other fields. Unknown link kinds are dropped. ReadJSON
// fails with INVALID_FORMAT on malformed JSON and INVALID_MANIFEST when the
// project has no usable name. It does not close r.
func ReadJSON(r io.Reader) (*project.Root, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidFormat, err, "decode json")
	}
	root := doc.toRoot()
	if err := root.Validate(); err != nil {
		return nil, err
	}
	return root, nil
}
