package core

import (
	"io"
	"time"

	"beamplan/internal/plsfile"
	"beamplan/pkg/domain"
)

// serializeGuard enforces the writer's load preconditions: a list without a
// geometry file or with unreconciled write fields would be rejected at the
// instrument, so it is rejected here instead. The file check runs first.
func (p *Positionlist) serializeGuard() error {
	if p.geometryFile == "" {
		return domain.NoFileAssignedError{}
	}
	var missing []int
	for _, e := range p.entries {
		if e.Area == nil {
			missing = append(missing, e.ID)
		}
	}
	if len(missing) > 0 {
		return domain.IncompleteAreaError{EntryIDs: missing}
	}
	return nil
}

func (p *Positionlist) document() plsfile.Document {
	return plsfile.Document{
		Wafermap:     p.wmap.Name,
		GeometryFile: p.geometryFile,
		Entries:      p.Entries(),
	}
}

// Serialize writes the positionlist in the writer's file format. It fails
// without touching w when no geometry file is assigned or any entry lacks a
// write field.
func (p *Positionlist) Serialize(w io.Writer) (err error) {
	defer p.observe("serialize", time.Now(), &err)

	if err := p.serializeGuard(); err != nil {
		return err
	}
	return plsfile.Encode(w, p.document())
}

// WriteFile serializes the positionlist to path atomically.
func (p *Positionlist) WriteFile(path string) (err error) {
	defer p.observe("serialize", time.Now(), &err)

	if err := p.serializeGuard(); err != nil {
		return err
	}
	return plsfile.WriteFile(path, p.document())
}

// Deserialize rebuilds a positionlist from its serialized form. The ID
// counter resumes past the highest ID present, so entries added afterwards
// never collide.
func Deserialize(r io.Reader, opts ...Option) (*Positionlist, error) {
	doc, err := plsfile.Decode(r)
	if err != nil {
		return nil, err
	}
	return fromDocument(doc, opts...)
}

// ReadFile loads a positionlist from a file on disk.
func ReadFile(path string, opts ...Option) (*Positionlist, error) {
	doc, err := plsfile.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return fromDocument(doc, opts...)
}

func fromDocument(doc plsfile.Document, opts ...Option) (*Positionlist, error) {
	return Restore(domain.Snapshot{
		Wafermap:     doc.Wafermap,
		GeometryFile: doc.GeometryFile,
		Entries:      doc.Entries,
	}, opts...)
}
