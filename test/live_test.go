//go:build integration_test || all_tests

package test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/2beens/gymlive/internal/live/api"
	"github.com/2beens/gymlive/internal/live/draft"
	"github.com/2beens/gymlive/internal/live/resume"
	"github.com/2beens/gymlive/internal/live/session"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

func (s *IntegrationTestSuite) do(method, path string, body any) (*http.Response, []byte) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, serverEndpoint+path, reader)
	s.Require().NoError(err)
	req.Header.Set("Origin", testOrigin)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp, respBody
}

func (s *IntegrationTestSuite) mutate(userID string, in session.Intent) api.MutationResponse {
	resp, body := s.do(http.MethodPost, "/live/"+userID+"/session/mutate", in)
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))
	var mr api.MutationResponse
	s.Require().NoError(json.Unmarshal(body, &mr))
	return mr
}

func strPtr(s string) *string { return &s }

func (s *IntegrationTestSuite) TestLiveSession_CompleteCommitsHistory() {
	userID := "it-" + uuid.NewString()

	resp, body := s.do(http.MethodPost, "/live/"+userID+"/session", api.StartRequest{
		Title: gofakeit.Adjective() + " Leg Day",
		Exercises: []api.StartExercise{
			{ExerciseID: "squat", Name: "Squat", Type: draft.ExerciseTypeStrength, SetCount: 2},
			{ExerciseID: "bike", Name: "Bike", Type: draft.ExerciseTypeCardio, SetCount: 1},
		},
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode, string(body))

	mr := s.mutate(userID, session.Intent{Op: session.OpOpenExercise, ExerciseIndex: 0})
	s.True(mr.Changed)
	for set := 1; set <= 2; set++ {
		s.mutate(userID, session.Intent{
			Op: session.OpUpdateSetValue, ExerciseIndex: 0, SetNumber: set,
			Field: draft.FieldWeight, Input: strPtr("100.25"),
		})
		s.mutate(userID, session.Intent{
			Op: session.OpUpdateSetValue, ExerciseIndex: 0, SetNumber: set,
			Field: draft.FieldReps, Input: strPtr("5"),
		})
	}

	resp, _ = s.do(http.MethodPost, "/live/"+userID+"/session/flush", nil)
	s.Require().Equal(http.StatusNoContent, resp.StatusCode)

	var remoteDrafts int
	s.Require().NoError(s.DB.QueryRow(
		`SELECT count(*) FROM live_workout_draft WHERE user_id = $1`, userID,
	).Scan(&remoteDrafts))
	s.Equal(1, remoteDrafts)

	resp, body = s.do(http.MethodPost, "/live/"+userID+"/session/complete", nil)
	s.Require().Equal(http.StatusNoContent, resp.StatusCode, string(body))

	var weights []float64
	rows, err := s.DB.Query(`
		SELECT s.weight FROM workout_history_set s
		JOIN workout_history h ON h.id = s.workout_history_id
		WHERE h.user_id = $1 AND s.exercise_id = 'squat'
		ORDER BY s.set_number`, userID)
	s.Require().NoError(err)
	defer rows.Close()
	for rows.Next() {
		var w float64
		s.Require().NoError(rows.Scan(&w))
		weights = append(weights, w)
	}
	s.Require().NoError(rows.Err())
	s.Equal([]float64{100.25, 100.25}, weights)

	s.Require().NoError(s.DB.QueryRow(
		`SELECT count(*) FROM live_workout_draft WHERE user_id = $1`, userID,
	).Scan(&remoteDrafts))
	s.Equal(0, remoteDrafts)

	resp, _ = s.do(http.MethodGet, "/live/"+userID+"/session", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestResume_DraftFromAnotherDevice() {
	userID := "it-" + uuid.NewString()
	startedAt := time.Now().Add(-20 * time.Minute).UTC().Truncate(time.Second)

	d := draft.NewDraft(draft.NewDraftParams{
		UserID:    userID,
		Title:     "Push Day",
		StartedAt: startedAt,
		Exercises: []draft.Exercise{
			draft.NewExercise("", "bench", "Bench Press", draft.ExerciseTypeStrength, 3),
		},
	})
	payload, err := json.Marshal(d)
	s.Require().NoError(err)
	_, err = s.DB.Exec(`INSERT INTO live_workout_draft (user_id, payload) VALUES ($1, $2)`, userID, payload)
	s.Require().NoError(err)

	resp, body := s.do(http.MethodGet, "/live/"+userID+"/resume?route=/home", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))
	var rr api.ResumeResponse
	s.Require().NoError(json.Unmarshal(body, &rr))
	s.Equal(resume.StateOffered, rr.State)
	s.Require().NotNil(rr.Offer)
	s.Equal(d.ID, rr.Offer.DraftID)
	s.Equal("Push Day", rr.Offer.Title)

	resp, body = s.do(http.MethodPost, "/live/"+userID+"/resume/continue", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))
	var resumed draft.Draft
	s.Require().NoError(json.Unmarshal(body, &resumed))
	s.Equal(d.ID, resumed.ID)

	resp, _ = s.do(http.MethodGet, "/live/"+userID+"/session", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, body = s.do(http.MethodDelete, "/live/"+userID+"/session", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))

	var remoteDrafts int
	s.Require().NoError(s.DB.QueryRow(
		`SELECT count(*) FROM live_workout_draft WHERE user_id = $1`, userID,
	).Scan(&remoteDrafts))
	s.Equal(0, remoteDrafts)
}
