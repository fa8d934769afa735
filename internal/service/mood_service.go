package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mindpath/therapy-app/internal/ai"
	"mindpath/therapy-app/internal/domain"
	"mindpath/therapy-app/internal/quota"
	"mindpath/therapy-app/internal/repository"
	"mindpath/therapy-app/internal/storage"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidMedia   = errors.New("invalid mood media")
	ErrUploadURLError = errors.New("failed to generate upload URL")
	ErrMediaNotOwned  = errors.New("media object does not belong to this user")
)

const moodMediaPrefix = "moods"

// UploadURLResponse structure for returning URL and object key
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"` // The key the client reports back once uploaded
}

// MoodAnalyzer derives a mood from a voice clip or face photo. Satisfied by
// *ai.Adapter.
type MoodAnalyzer interface {
	AnalyzeVoiceSignal(ctx context.Context, clip ai.Attachment) (*ai.MoodAnalysis, error)
	AnalyzeFaceSignal(ctx context.Context, photo ai.Attachment) (*ai.MoodAnalysis, error)
}

// MediaOptions bounds mood media handling.
type MediaOptions struct {
	PresignExpiry time.Duration
	MaxBytes      int64
}

type MoodService interface {
	RecordMood(ctx context.Context, userID primitive.ObjectID, score int, note string) (*domain.MoodObservation, error)
	RecentMoods(ctx context.Context, userID primitive.ObjectID) ([]domain.MoodObservation, error)
	RequestMediaUpload(ctx context.Context, userID primitive.ObjectID, kind domain.MediaKind, contentType string) (*UploadURLResponse, error)
	RecordMoodFromMedia(ctx context.Context, userID primitive.ObjectID, kind domain.MediaKind, objectKey string) (*domain.MoodObservation, error)
}

type moodService struct {
	moodRepo    repository.MoodRepository
	fileStorage storage.FileStorage
	analyzer    MoodAnalyzer
	limiter     quota.Limiter
	window      int
	media       MediaOptions
	now         func() time.Time
}

// NewMoodService creates a new instance of moodService.
func NewMoodService(
	moodRepo repository.MoodRepository,
	fileStorage storage.FileStorage,
	analyzer MoodAnalyzer,
	limiter quota.Limiter,
	window int,
	media MediaOptions,
) MoodService {
	if limiter == nil {
		limiter = quota.Unlimited{}
	}
	if window <= 0 {
		window = domain.MoodWindowLen
	}
	if media.PresignExpiry <= 0 {
		media.PresignExpiry = storage.DefaultPresignedURLExpiry
	}
	return &moodService{
		moodRepo:    moodRepo,
		fileStorage: fileStorage,
		analyzer:    analyzer,
		limiter:     limiter,
		window:      window,
		media:       media,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// RecordMood logs a self-reported mood.
func (s *moodService) RecordMood(ctx context.Context, userID primitive.ObjectID, score int, note string) (*domain.MoodObservation, error) {
	note = strings.TrimSpace(note)
	var fields []string
	if score < domain.MinMoodScore || score > domain.MaxMoodScore {
		fields = append(fields, "mood")
	}
	if utf8.RuneCountInString(note) > domain.MaxMoodNote {
		fields = append(fields, "note")
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	mood := &domain.MoodObservation{
		UserID: userID,
		Score:  score,
		Note:   note,
		Date:   s.now(),
	}
	return s.save(ctx, mood)
}

// RecentMoods returns the mood window, newest first.
func (s *moodService) RecentMoods(ctx context.Context, userID primitive.ObjectID) ([]domain.MoodObservation, error) {
	return s.moodRepo.Recent(ctx, userID, s.window)
}

// RequestMediaUpload presigns a PUT for a voice clip or face photo.
func (s *moodService) RequestMediaUpload(ctx context.Context, userID primitive.ObjectID, kind domain.MediaKind, contentType string) (*UploadURLResponse, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if err := checkMediaType(kind, contentType); err != nil {
		return nil, err
	}

	fileExtension := ""
	if parts := strings.SplitN(contentType, "/", 2); len(parts) == 2 {
		fileExtension = parts[1]
	}
	objectKey := path.Join(mediaDir(userID, kind), fmt.Sprintf("%s.%s", uuid.NewString(), fileExtension))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, s.media.PresignExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}
	return &UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// RecordMoodFromMedia analyses an uploaded blob and logs the derived mood.
func (s *moodService) RecordMoodFromMedia(ctx context.Context, userID primitive.ObjectID, kind domain.MediaKind, objectKey string) (*domain.MoodObservation, error) {
	if kind != domain.MediaVoice && kind != domain.MediaFace {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidMedia, kind)
	}
	if path.Clean(objectKey) != objectKey || !strings.HasPrefix(objectKey, mediaDir(userID, kind)+"/") {
		return nil, ErrMediaNotOwned
	}

	obj, err := s.fileStorage.GetObject(ctx, objectKey, s.media.MaxBytes)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrObjectNotFound):
			return nil, fmt.Errorf("%w: object not uploaded", ErrInvalidMedia)
		case errors.Is(err, storage.ErrObjectTooLarge):
			return nil, fmt.Errorf("%w: object too large", ErrInvalidMedia)
		}
		return nil, fmt.Errorf("downloading media: %w", err)
	}
	contentType := strings.ToLower(obj.ContentType)
	if err := checkMediaType(kind, contentType); err != nil {
		return nil, err
	}

	if err := s.limiter.Consume(ctx, userID.Hex()); err != nil {
		if errors.Is(err, quota.ErrExceeded) {
			return nil, ErrQuotaExceeded
		}
		return nil, fmt.Errorf("checking generation quota: %w", err)
	}

	att := ai.Attachment{Data: obj.Data, MIMEType: contentType}
	var analysis *ai.MoodAnalysis
	if kind == domain.MediaVoice {
		analysis, err = s.analyzer.AnalyzeVoiceSignal(ctx, att)
	} else {
		analysis, err = s.analyzer.AnalyzeFaceSignal(ctx, att)
	}
	if err != nil {
		return nil, generationFailed(userID, string(kind)+" mood analysis", err)
	}

	mood := &domain.MoodObservation{
		UserID:   userID,
		Score:    analysis.MoodScore,
		MediaKey: objectKey,
		Date:     s.now(),
	}
	if kind == domain.MediaVoice {
		mood.VoiceAnalysis = analysis.Description
	} else {
		mood.FaceAnalysis = analysis.Description
	}
	return s.save(ctx, mood)
}

func (s *moodService) save(ctx context.Context, mood *domain.MoodObservation) (*domain.MoodObservation, error) {
	id, err := s.moodRepo.Create(ctx, mood)
	if err != nil {
		log.Printf("ERROR: Failed to save mood for user %s: %v", mood.UserID.Hex(), err)
		return nil, err
	}
	mood.ID = id
	return mood, nil
}

func mediaDir(userID primitive.ObjectID, kind domain.MediaKind) string {
	return path.Join(moodMediaPrefix, userID.Hex(), string(kind))
}

func checkMediaType(kind domain.MediaKind, contentType string) error {
	switch kind {
	case domain.MediaVoice:
		if strings.HasPrefix(contentType, "audio/") {
			return nil
		}
	case domain.MediaFace:
		if strings.HasPrefix(contentType, "image/") {
			return nil
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidMedia, kind)
	}
	return fmt.Errorf("%w: content type %q not allowed for %s", ErrInvalidMedia, contentType, kind)
}
