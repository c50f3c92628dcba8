package application

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"path"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"

	"todosync/internal/domain/entity"
	repo "todosync/internal/domain/repository"
	"todosync/pkg/helpers"
)

var (
	ErrAvatarTooLarge = errors.New("avatar image too large")
	ErrInvalidImage   = errors.New("avatar image is not valid base64")
)

// ProfileService reads and mutates the per-user profile document.
type ProfileService struct {
	Users          repo.UserRepository
	Profiles       repo.ProfileRepository
	GCS            *storage.Client
	GCSBucket      string
	AvatarMaxBytes int
	Logger         *logrus.Logger
}

func NewProfileService(users repo.UserRepository, profiles repo.ProfileRepository, gcs *storage.Client, gcsBucket string, avatarMaxBytes int, logger *logrus.Logger) *ProfileService {
	return &ProfileService{
		Users:          users,
		Profiles:       profiles,
		GCS:            gcs,
		GCSBucket:      gcsBucket,
		AvatarMaxBytes: avatarMaxBytes,
		Logger:         logger,
	}
}

// Load fetches the profile document once. It never fails: a missing row
// yields the empty profile, and read errors are logged and degrade to
// the same. The email always comes from the identity, which stays
// authoritative over the copy in the document.
func (s *ProfileService) Load(ctx context.Context, userID string) *entity.Profile {
	email := ""
	if u, err := s.Users.GetByID(ctx, userID); err == nil {
		email = u.Email
	} else if s.Logger != nil && !errors.Is(err, repo.ErrNotFound) {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("identity load failed")
	}

	p, err := s.Profiles.Get(ctx, userID)
	if err != nil {
		if s.Logger != nil && !errors.Is(err, repo.ErrNotFound) {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("profile load failed")
		}
		return entity.EmptyProfile(userID, email)
	}
	if email != "" {
		p.Email = email
	}
	return p
}

// UpdateUsername unconditionally overwrites the username field.
func (s *ProfileService) UpdateUsername(ctx context.Context, userID, username string) error {
	return s.Profiles.SetUsername(ctx, userID, username)
}

// UpdateAvatar overwrites the base64 avatar after checking the
// configured size ceiling, then mirrors the decoded bytes to object
// storage best-effort when a bucket is configured.
func (s *ProfileService) UpdateAvatar(ctx context.Context, userID, photoBase64 string) error {
	if s.AvatarMaxBytes > 0 && len(photoBase64) > s.AvatarMaxBytes {
		return ErrAvatarTooLarge
	}
	raw, err := base64.StdEncoding.DecodeString(photoBase64)
	if err != nil {
		return ErrInvalidImage
	}
	if err := s.Profiles.SetPhoto(ctx, userID, photoBase64); err != nil {
		return err
	}

	if s.GCS != nil && s.GCSBucket != "" {
		objectPath := path.Join("avatars", userID+".jpg")
		if _, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, "image/jpeg", bytes.NewReader(raw)); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("avatar mirror to object storage failed")
		}
	}
	return nil
}
