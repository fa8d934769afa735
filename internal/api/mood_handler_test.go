package api

import (
	"net/http"
	"testing"
	"time"

	"mindpath/therapy-app/internal/domain"
	"mindpath/therapy-app/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRecordMood_Handler(t *testing.T) {
	userID := primitive.NewObjectID()
	moods := &stubMoodService{mood: &domain.MoodObservation{ID: primitive.NewObjectID(), UserID: userID, Score: 4}}
	router := newTestRouter(&stubPlanService{}, moods)

	w := doRequest(t, router, http.MethodPost, "/api/v1/moods", signToken(t, userID.Hex(), time.Now().Add(time.Hour)), map[string]any{"mood": 4, "note": "ok"})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 4, moods.gotScore)
	assert.EqualValues(t, 4, decodeBody(t, w)["mood"])
}

func TestRecordMood_MissingScore(t *testing.T) {
	userID := primitive.NewObjectID()
	router := newTestRouter(&stubPlanService{}, &stubMoodService{})

	w := doRequest(t, router, http.MethodPost, "/api/v1/moods", signToken(t, userID.Hex(), time.Now().Add(time.Hour)), `{"note": "no score"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordMood_OutOfRange(t *testing.T) {
	userID := primitive.NewObjectID()
	moods := &stubMoodService{err: &domain.ValidationError{Fields: []string{"mood"}}}
	router := newTestRouter(&stubPlanService{}, moods)

	w := doRequest(t, router, http.MethodPost, "/api/v1/moods", signToken(t, userID.Hex(), time.Now().Add(time.Hour)), `{"mood": 9}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []any{"mood"}, decodeBody(t, w)["fields"])
}

func TestGetRecentMoods_EmptyIsArray(t *testing.T) {
	userID := primitive.NewObjectID()
	router := newTestRouter(&stubPlanService{}, &stubMoodService{})

	w := doRequest(t, router, http.MethodGet, "/api/v1/moods", signToken(t, userID.Hex(), time.Now().Add(time.Hour)), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestGetMediaUploadURL(t *testing.T) {
	userID := primitive.NewObjectID()
	moods := &stubMoodService{upload: &service.UploadURLResponse{UploadURL: "https://s3.test/put", ObjectKey: "moods/x/voice/a.wav"}}
	router := newTestRouter(&stubPlanService{}, moods)

	w := doRequest(t, router, http.MethodPost, "/api/v1/moods/media/upload-url", signToken(t, userID.Hex(), time.Now().Add(time.Hour)),
		map[string]string{"kind": "voice", "contentType": "audio/wav"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.MediaVoice, moods.gotKind)
	body := decodeBody(t, w)
	assert.Equal(t, "https://s3.test/put", body["uploadUrl"])
	assert.Equal(t, "moods/x/voice/a.wav", body["objectKey"])
}

func TestGetMediaUploadURL_Errors(t *testing.T) {
	userID := primitive.NewObjectID()
	token := signToken(t, userID.Hex(), time.Now().Add(time.Hour))
	req := map[string]string{"kind": "face", "contentType": "audio/wav"}

	w := doRequest(t, newTestRouter(&stubPlanService{}, &stubMoodService{err: service.ErrInvalidMedia}), http.MethodPost, "/api/v1/moods/media/upload-url", token, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, newTestRouter(&stubPlanService{}, &stubMoodService{err: service.ErrUploadURLError}), http.MethodPost, "/api/v1/moods/media/upload-url", token, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRecordMoodFromMedia_Handler(t *testing.T) {
	userID := primitive.NewObjectID()
	key := "moods/" + userID.Hex() + "/face/p.jpeg"
	moods := &stubMoodService{mood: &domain.MoodObservation{UserID: userID, Score: 3, FaceAnalysis: "calm"}}
	router := newTestRouter(&stubPlanService{}, moods)

	w := doRequest(t, router, http.MethodPost, "/api/v1/moods/media", signToken(t, userID.Hex(), time.Now().Add(time.Hour)),
		map[string]string{"kind": "face", "objectKey": key})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, domain.MediaFace, moods.gotKind)
	assert.Equal(t, key, moods.gotKey)
	assert.Equal(t, "calm", decodeBody(t, w)["faceAnalysis"])
}

func TestRecordMoodFromMedia_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"foreign key", service.ErrMediaNotOwned, http.StatusForbidden},
		{"not uploaded", service.ErrInvalidMedia, http.StatusBadRequest},
		{"quota", service.ErrQuotaExceeded, http.StatusTooManyRequests},
		{"analysis failed", &service.GenerationError{Kind: "malformed_payload"}, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			userID := primitive.NewObjectID()
			router := newTestRouter(&stubPlanService{}, &stubMoodService{err: tc.err})

			w := doRequest(t, router, http.MethodPost, "/api/v1/moods/media", signToken(t, userID.Hex(), time.Now().Add(time.Hour)),
				map[string]string{"kind": "voice", "objectKey": "moods/other/voice/a.wav"})

			assert.Equal(t, tc.code, w.Code)
		})
	}
}
