package service

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"github.com/madunda/task-manager-api/internal/core/domain"
	"github.com/madunda/task-manager-api/internal/core/ports"
)

const (
	// MaxAvatarBytes is the upload cap, checked before any decode work.
	MaxAvatarBytes = 1000000
	avatarSize     = 250
)

// AvatarService validates, resizes and stores profile images. Whatever comes
// in as jpg, jpeg or png is stored as a 250x250 PNG on the user record.
type AvatarService struct {
	users  ports.UserRepository
	logger zerolog.Logger
}

func NewAvatarService(users ports.UserRepository, logger zerolog.Logger) *AvatarService {
	return &AvatarService{users: users, logger: logger}
}

// Store runs the upload pipeline: extension and size gates first, then
// decode, square resize, PNG re-encode, and persistence on the user document.
func (s *AvatarService) Store(ctx context.Context, userID, filename string, file io.Reader, size int64) error {
	if !allowedExtension(filename) {
		return domain.ErrAvatarBadType
	}
	if size > MaxAvatarBytes {
		return domain.ErrAvatarTooLarge
	}

	// The declared size is not trusted; reading one byte past the cap
	// catches lying clients without buffering the whole stream first.
	raw, err := io.ReadAll(io.LimitReader(file, MaxAvatarBytes+1))
	if err != nil {
		return err
	}
	if len(raw) > MaxAvatarBytes {
		return domain.ErrAvatarTooLarge
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return domain.ErrAvatarBadType
	}

	resized := imaging.Fill(img, avatarSize, avatarSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		return err
	}

	if err := s.users.SetAvatar(ctx, userID, buf.Bytes()); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", userID).Int("bytes", buf.Len()).Msg("avatar stored")
	return nil
}

// Fetch returns the stored PNG, or ErrAvatarNotFound when the user has none.
func (s *AvatarService) Fetch(ctx context.Context, userID string) ([]byte, error) {
	return s.users.FindAvatar(ctx, userID)
}

// Clear removes the avatar from the user record.
func (s *AvatarService) Clear(ctx context.Context, userID string) error {
	return s.users.ClearAvatar(ctx, userID)
}

func allowedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}
