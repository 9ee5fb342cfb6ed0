package core

import (
	"bytes"
	"context"
	"time"

	"beamplan/internal/blob"
	"beamplan/internal/plsfile"
)

// Export serializes the positionlist and uploads it to the blob store under
// key. The same guards as Serialize apply; nothing is uploaded when they
// fail.
func (p *Positionlist) Export(ctx context.Context, store blob.Store, key string) (info blob.Info, err error) {
	defer p.observe("export", time.Now(), &err)

	if err := p.serializeGuard(); err != nil {
		return blob.Info{}, err
	}
	var buf bytes.Buffer
	if err := plsfile.Encode(&buf, p.document()); err != nil {
		return blob.Info{}, err
	}
	return store.Put(ctx, key, &buf)
}
