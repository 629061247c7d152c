package skybase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// uploadSession tracks one server-side chunked upload. It is owned by a
// single upload call and destroyed by either the commit or the abort.
type uploadSession struct {
	UploadID string `json:"upload_id"`
	Name     string `json:"name"`
}

// chunkUploader drives the three-phase protocol for contents above
// MaxChunkSize: initiate, upload parts, then exactly one of commit or
// abort. Every part is attempted regardless of individual failures;
// only the aggregate outcome decides commit versus abort.
type chunkUploader struct {
	drive   *Drive
	saveAs  string
	content []byte
	workers int
}

func newChunkUploader(drive *Drive, saveAs string, content []byte, opts *UploadOptions) *chunkUploader {
	workers := 1
	if opts != nil && opts.Concurrency > 1 {
		workers = opts.Concurrency
	}
	return &chunkUploader{
		drive:   drive,
		saveAs:  saveAs,
		content: content,
		workers: workers,
	}
}

func (u *chunkUploader) upload(ctx context.Context) (*PutFileResponse, error) {
	session, err := u.initiate(ctx)
	if err != nil {
		return nil, err
	}

	partErrs := u.uploadParts(ctx, session)
	if len(partErrs) > 0 {
		if err := u.abort(ctx, session); err != nil {
			return nil, fmt.Errorf("drive put %q: %w", u.saveAs, err)
		}
		return nil, fmt.Errorf("drive put %q: upload aborted: %w", u.saveAs, errors.Join(partErrs...))
	}

	return u.commit(ctx, session)
}

func (u *chunkUploader) initiate(ctx context.Context) (*uploadSession, error) {
	var session *uploadSession
	resp, err := u.drive.client.R().
		SetContext(ctx).
		SetQueryParam("name", u.saveAs).
		SetSuccessResult(&session).
		Post(u.drive.prefix + "/uploads")

	if err := handleAPIError(resp, err, "drive initiate upload"); err != nil {
		return nil, err
	}
	if session == nil || session.UploadID == "" {
		return nil, fmt.Errorf("drive initiate upload: %w", ErrInvalidResponse)
	}

	return session, nil
}

// uploadParts sends every chunk, sequentially or bounded-parallel, and
// returns the per-part failures.
func (u *chunkUploader) uploadParts(ctx context.Context, session *uploadSession) []error {
	count := u.partCount()
	errs := make([]error, count)

	if u.workers <= 1 {
		for part := 1; part <= count; part++ {
			errs[part-1] = u.uploadPart(ctx, session, part)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(u.workers)
		for part := 1; part <= count; part++ {
			part := part
			g.Go(func() error {
				errs[part-1] = u.uploadPart(ctx, session, part)
				return nil
			})
		}
		_ = g.Wait()
	}

	var failed []error
	for i, err := range errs {
		if err != nil {
			failed = append(failed, fmt.Errorf("part %d: %w", i+1, err))
		}
	}
	return failed
}

func (u *chunkUploader) uploadPart(ctx context.Context, session *uploadSession, part int) error {
	resp, err := u.drive.client.R().
		SetContext(ctx).
		SetQueryParam("name", u.saveAs).
		SetQueryParam("part", strconv.Itoa(part)).
		SetContentType("application/octet-stream").
		SetBodyBytes(u.chunk(part)).
		Post(u.sessionURL(session) + "/parts")

	return handleAPIError(resp, err, "drive upload part")
}

func (u *chunkUploader) commit(ctx context.Context, session *uploadSession) (*PutFileResponse, error) {
	var out *PutFileResponse
	resp, err := u.drive.client.R().
		SetContext(ctx).
		SetQueryParam("name", u.saveAs).
		SetSuccessResult(&out).
		Patch(u.sessionURL(session))

	if err := handleAPIError(resp, err, "drive commit upload"); err != nil {
		return nil, err
	}

	return out, nil
}

func (u *chunkUploader) abort(ctx context.Context, session *uploadSession) error {
	resp, err := u.drive.client.R().
		SetContext(ctx).
		SetQueryParam("name", u.saveAs).
		Delete(u.sessionURL(session))

	return handleAPIError(resp, err, "drive abort upload")
}

func (u *chunkUploader) sessionURL(session *uploadSession) string {
	return u.drive.prefix + "/uploads/" + url.PathEscape(session.UploadID)
}

func (u *chunkUploader) partCount() int {
	return (len(u.content) + MaxChunkSize - 1) / MaxChunkSize
}

// chunk returns the 1-indexed part's slice of the content.
func (u *chunkUploader) chunk(part int) []byte {
	start := (part - 1) * MaxChunkSize
	end := start + MaxChunkSize
	if end > len(u.content) {
		end = len(u.content)
	}
	return u.content[start:end]
}
