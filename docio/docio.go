// Package docio opens and saves weft documents backed by files on disk.
// Reading maps the file into memory where the platform supports it
// (internal/mmfile) instead of copying it into a []byte; writing goes
// through a temp-file-plus-rename sequence so a crash mid-write never
// leaves a half-written document at the destination path.
package docio

import (
	"fmt"

	"github.com/arnelofgren/weft"
	"github.com/arnelofgren/weft/internal/mmfile"
	"github.com/arnelofgren/weft/sharedkeys"
)

// Doc is a weft.Doc whose backing bytes come from an open, possibly
// memory-mapped file. Close releases both the document's Scope and the
// underlying mapping, in that order: the Scope must be deregistered
// before the pages it points into are unmapped, since an in-flight
// lookup through the process-wide registry (see weft.Containing) reads
// the Scope's data slice directly.
type Doc struct {
	doc    *weft.Doc
	unmap  func() error
	extern *Doc // kept alive for its byte range, if OpenFileWithExtern was used
}

// Options configures OpenFile.
type Options struct {
	// Trust controls validation depth. Default: weft.Untrusted, since files
	// on disk are not assumed to come from this package's own encoder.
	Trust weft.Trust
	// SharedKeys, if set, resolves interned map keys. Default: nil.
	SharedKeys *sharedkeys.Table
}

// OpenFile maps path into memory and decodes it as a weft document.
func OpenFile(path string, opts Options) (*Doc, error) {
	data, unmap, err := mmfile.Map(path)
	if err != nil {
		return nil, fmt.Errorf("docio: %w", err)
	}
	doc, err := weft.FromData(data, opts.Trust, opts.SharedKeys, nil)
	if err != nil {
		_ = unmap()
		return nil, fmt.Errorf("docio: %w", err)
	}
	return &Doc{doc: doc, unmap: unmap}, nil
}

// OpenFileWithExtern maps path as the extern range for a second file
// opened at mainPath: mainPath's back-pointers that resolve before its
// own start reach into path's bytes. Both files are kept mapped until
// Close. This is the read side of append-only base-document amendment
// (see encode.Encoder.SetBase): mainPath holds only the new bytes
// written since the base, path holds the base document itself.
func OpenFileWithExtern(mainPath, path string, opts Options) (*Doc, error) {
	externDoc, err := OpenFile(path, opts)
	if err != nil {
		return nil, err
	}
	data, unmap, err := mmfile.Map(mainPath)
	if err != nil {
		externDoc.Close()
		return nil, fmt.Errorf("docio: %w", err)
	}
	doc, err := weft.FromData(data, opts.Trust, opts.SharedKeys, externDoc.Scope().Data())
	if err != nil {
		_ = unmap()
		externDoc.Close()
		return nil, fmt.Errorf("docio: %w", err)
	}
	return &Doc{doc: doc, unmap: unmap, extern: externDoc}, nil
}

// Root returns the document's root value.
func (d *Doc) Root() weft.Value { return d.doc.Root() }

// Scope returns the Scope backing the document, for callers that need
// raw access to its Data() or SharedKeys().
func (d *Doc) Scope() *weft.Scope { return d.doc.Scope() }

// Close deregisters the document's Scope, then releases the mapping (and
// the extern document's, if any). The returned error, if non-nil, comes
// from unmapping; the Scope deregistration itself cannot fail.
func (d *Doc) Close() error {
	d.doc.Close()
	err := d.unmap()
	if d.extern != nil {
		if extErr := d.extern.Close(); err == nil {
			err = extErr
		}
	}
	if err != nil {
		return fmt.Errorf("docio: %w", err)
	}
	return nil
}
