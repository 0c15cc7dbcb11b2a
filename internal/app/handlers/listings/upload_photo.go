package listings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainlisting "staybook/internal/domain/listing"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/storage/s3"
)

const uploadPhotoKey = "listings.photo.upload"

type UploadPhotoCommand struct {
	OwnerID     string
	ListingID   string
	ObjectKey   string
	ContentType string
	Reader      io.Reader
}

func (c UploadPhotoCommand) Key() string { return uploadPhotoKey }

type UploadPhotoResult struct {
	ListingID string `json:"listing_id"`
	PhotoURL  string `json:"photo_url"`
}

type UploadPhotoHandler struct {
	Logger   *slog.Logger
	Uploader s3.Uploader
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
}

func (h *UploadPhotoHandler) Handle(ctx context.Context, cmd UploadPhotoCommand) (*UploadPhotoResult, error) {
	if h.Uploader == nil {
		return nil, errors.New("listings: photo uploader unavailable")
	}
	if strings.TrimSpace(cmd.OwnerID) == "" {
		return nil, errors.New("listings: owner id is required")
	}
	if cmd.Reader == nil {
		return nil, errors.New("listings: photo reader is required")
	}
	if strings.TrimSpace(cmd.ObjectKey) == "" {
		return nil, errors.New("listings: object key is required")
	}

	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	l, err := unit.Listings().ByID(ctx, domainlisting.ID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	if l.Owner != domainuser.ID(cmd.OwnerID) {
		return nil, domainlisting.ErrNotOwned
	}

	publicURL, err := h.Uploader.Upload(ctx, cmd.ObjectKey, cmd.Reader, cmd.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}

	now := time.Now()
	l.SetPhoto(publicURL, now)
	l.Record(domainlisting.PhotoAdded{ListingID: l.ID, URL: publicURL, At: now.UTC()})
	if err := unit.Listings().Save(ctx, l); err != nil {
		return nil, err
	}

	pending := l.PendingEvents()
	l.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("listing photo updated", "listing_id", l.ID, "owner_id", cmd.OwnerID, "object_key", cmd.ObjectKey)
	}
	return &UploadPhotoResult{ListingID: string(l.ID), PhotoURL: publicURL}, nil
}

func (h *UploadPhotoHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[UploadPhotoCommand, *UploadPhotoResult] = (*UploadPhotoHandler)(nil)
