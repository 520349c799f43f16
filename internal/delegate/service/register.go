package service

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"time"

	"summit/internal/blob"
	"summit/internal/delegate/models"
	"summit/internal/delegate/secrets"
	id "summit/pkg/domain"
	dErrors "summit/pkg/domain-errors"
	"summit/pkg/platform/audit"
	"summit/pkg/platform/sentinel"
	"summit/pkg/requestcontext"
)

const (
	photoFolder    = "delegates/photos"
	documentFolder = "delegates/documents"
)

// Upload is a file part received with a registration.
type Upload struct {
	Filename string
	Data     []byte
}

// RegisterInput carries everything a self-registration submits. The handler
// has already validated shape; the service enforces domain rules.
type RegisterInput struct {
	Title       string
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Nationality string
	Password    string
	EventYear   int

	Type           models.DelegateType
	AttendanceMode models.AttendanceMode

	Identification models.IDDocument

	Address          string
	EmergencyContact *models.EmergencyContact
	Accommodation    *models.Accommodation
	VisaStatus       models.VisaStatus
	FlightDetails    *models.FlightDetails
	SocialLinks      map[string]string
	ConsentPhoto     bool
	ConsentData      bool

	ProfilePicture *Upload
	Document       *Upload
}

// Register creates a pending delegate for the target event year.
//
// The (email, eventYear) pre-check gives a friendly error on the common
// path; the store's uniqueness guarantee closes the race, surfacing as the
// same Conflict. No token is issued: delegates authenticate only once
// approved.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.Delegate, error) {
	start := time.Now()
	if s.metrics != nil {
		defer s.metrics.ObserveRegister(start)
	}
	now := requestcontext.Now(ctx)

	event, err := s.events.GetByYear(ctx, input.EventYear)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "no event found for year %d", input.EventYear)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "event lookup failed")
	}
	if !event.Active {
		return nil, dErrors.Newf(dErrors.CodeValidation, "event %d is not open for registration", input.EventYear)
	}

	email := models.NormalizeEmail(input.Email)
	_, err = s.delegates.FindByEmailAndYear(ctx, email, input.EventYear)
	switch {
	case err == nil:
		return nil, dErrors.New(dErrors.CodeConflict, "email already registered for this event year")
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, wrapStoreErr(err)
	}

	d, err := models.NewDelegate(id.NewDelegateID(), event.ID, input.EventYear, input.FirstName, input.LastName, email, input.Type, input.AttendanceMode, now)
	if err != nil {
		return nil, err
	}
	d.Title = input.Title
	d.Phone = input.Phone
	d.Nationality = input.Nationality
	d.Identification = input.Identification
	d.Address = input.Address
	d.EmergencyContact = input.EmergencyContact
	d.Accommodation = input.Accommodation
	d.VisaStatus = input.VisaStatus
	d.FlightDetails = input.FlightDetails
	d.SocialLinks = input.SocialLinks
	d.ConsentPhoto = input.ConsentPhoto
	d.ConsentData = input.ConsentData

	hash, err := secrets.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	d.PasswordHash = hash

	if url, err := s.storeUpload(ctx, photoFolder, input.ProfilePicture); err != nil {
		return nil, err
	} else if url != "" {
		d.ProfilePictureURL = url
	}
	if url, err := s.storeUpload(ctx, documentFolder, input.Document); err != nil {
		return nil, err
	} else if url != "" {
		d.Identification.DocumentURL = url
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.delegates.Create(txCtx, d); err != nil {
			return wrapStoreErr(err)
		}
		return s.appendAudit(txCtx, audit.Event{
			Kind:       audit.KindDelegateRegistered,
			DelegateID: d.ID,
			Outcome:    audit.OutcomeSuccess,
			Metadata:   map[string]string{"event_year": strconv.Itoa(d.EventYear)},
			OccurredAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementRegistrations()
	}
	s.logger.InfoContext(ctx, "delegate registered",
		"delegate_id", d.ID.String(),
		"event_year", d.EventYear,
	)

	if s.notifier != nil {
		s.notifier.RegistrationReceived(ctx, d)
	}
	if s.jobs != nil {
		if err := s.jobs.EnqueueReviewPush(ctx, d.ID); err != nil {
			s.logger.ErrorContext(ctx, "enqueue review push",
				"delegate_id", d.ID.String(),
				"error", err,
			)
		}
	}

	return d, nil
}

// storeUpload normalizes and persists one file part, returning its public
// URL. Image uploads are resized before storage; other content passes
// through unchanged. A missing blob store skips the upload with a warning
// so development setups without GCS still accept registrations.
func (s *Service) storeUpload(ctx context.Context, folder string, upload *Upload) (string, error) {
	if upload == nil || len(upload.Data) == 0 {
		return "", nil
	}
	if s.uploads == nil {
		s.logger.WarnContext(ctx, "upload skipped, blob storage not configured",
			"filename", upload.Filename,
		)
		return "", nil
	}

	data, contentType, err := blob.NormalizeImage(upload.Data)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeValidation, "uploaded file is not a valid image")
	}

	key := blob.ObjectKey(folder, upload.Filename)
	url, err := s.uploads.Upload(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		s.logger.ErrorContext(ctx, "store upload",
			"key", key,
			"error", err,
		)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not store uploaded file")
	}
	return url, nil
}
