package skybase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/imroc/req/v3"
)

const (
	// MaxChunkSize is the chunked-upload threshold and part size.
	// Contents at most this large upload in a single request.
	MaxChunkSize = 10 * 1024 * 1024

	// defaultListLimit matches the server default page size.
	defaultListLimit = 1000
)

// Drive is a handle on one named blob store.
type Drive struct {
	Name   string
	client *req.Client
	prefix string
}

// List returns one page of file names matching the prefix. A limit of
// zero falls back to the server default of 1000.
func (d *Drive) List(ctx context.Context, prefix string, limit int, last string) (*ListResponse, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	r := d.client.R().
		SetContext(ctx).
		SetQueryParam("limit", strconv.Itoa(limit))
	if prefix != "" {
		r.SetQueryParam("prefix", prefix)
	}
	if last != "" {
		r.SetQueryParam("last", last)
	}

	var out *ListResponse
	resp, err := r.SetSuccessResult(&out).Get(d.prefix + "/files")

	if err := handleAPIError(resp, err, "drive list"); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("drive list: %w", ErrInvalidResponse)
	}

	return out, nil
}

// ListAll walks List pages until the cursor runs out and returns every
// matching file name.
func (d *Drive) ListAll(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	last := ""
	for {
		page, err := d.List(ctx, prefix, 0, last)
		if err != nil {
			return nil, err
		}
		names = append(names, page.Names...)
		if page.Paging.Last == "" {
			return names, nil
		}
		last = page.Paging.Last
	}
}

// Get downloads the raw bytes of the named file.
func (d *Drive) Get(ctx context.Context, name string) ([]byte, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetQueryParam("name", name).
		Get(d.prefix + "/files/download")

	if err := handleAPIError(resp, err, "drive get"); err != nil {
		return nil, err
	}

	return resp.Bytes(), nil
}

// Put uploads content under the given name, transparently chunking
// when it exceeds MaxChunkSize.
func (d *Drive) Put(ctx context.Context, saveAs string, content []byte) (*PutFileResponse, error) {
	return d.PutWithOptions(ctx, saveAs, content, nil)
}

// PutWithOptions is Put with upload tuning. A chunked upload either
// commits fully or is aborted; it is never left half-committed.
func (d *Drive) PutWithOptions(ctx context.Context, saveAs string, content []byte, opts *UploadOptions) (*PutFileResponse, error) {
	if saveAs == "" {
		return nil, ErrEmptyName
	}

	if len(content) <= MaxChunkSize {
		return d.putSingle(ctx, saveAs, content)
	}

	return newChunkUploader(d, saveAs, content, opts).upload(ctx)
}

func (d *Drive) putSingle(ctx context.Context, saveAs string, content []byte) (*PutFileResponse, error) {
	var out *PutFileResponse
	resp, err := d.client.R().
		SetContext(ctx).
		SetQueryParam("name", saveAs).
		SetContentType("application/octet-stream").
		SetBodyBytes(content).
		SetSuccessResult(&out).
		Post(d.prefix + "/files")

	if err := handleAPIError(resp, err, "drive put"); err != nil {
		return nil, err
	}

	return out, nil
}

// Delete removes the named files in one call.
func (d *Drive) Delete(ctx context.Context, names ...string) (*DeleteFilesResponse, error) {
	if len(names) == 0 {
		return nil, ErrEmptyName
	}

	var out *DeleteFilesResponse
	resp, err := d.client.R().
		SetContext(ctx).
		SetBody(map[string]any{"names": names}).
		SetSuccessResult(&out).
		Delete(d.prefix + "/files")

	if err := handleAPIError(resp, err, "drive delete"); err != nil {
		return nil, err
	}

	return out, nil
}
