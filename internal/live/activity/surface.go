package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/2beens/gymlive/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

var (
	_ Surface = (*HTTPSurface)(nil)
	_ Surface = LogSurface{}
)

const defaultSurfaceTimeout = 5 * time.Second

// HTTPSurface forwards live-activity payloads to a push gateway, which
// delivers them to the user's device.
//
//	POST {gateway}/live-activity/{userId}/start   body: payload
//	POST {gateway}/live-activity/{userId}/update  body: payload
//	POST {gateway}/live-activity/{userId}/stop
type HTTPSurface struct {
	gatewayURL string
	token      string
	httpClient *http.Client
}

// NewHTTPSurface creates a surface posting to gatewayURL. A nil client
// gets an otelhttp instrumented default one.
func NewHTTPSurface(gatewayURL, token string, httpClient *http.Client) *HTTPSurface {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   defaultSurfaceTimeout,
		}
	}
	return &HTTPSurface{
		gatewayURL: gatewayURL,
		token:      token,
		httpClient: httpClient,
	}
}

func (s *HTTPSurface) Start(ctx context.Context, userID string, p Payload) error {
	return s.post(ctx, userID, "start", &p)
}

func (s *HTTPSurface) Update(ctx context.Context, userID string, p Payload) error {
	return s.post(ctx, userID, "update", &p)
}

func (s *HTTPSurface) Stop(ctx context.Context, userID string) error {
	return s.post(ctx, userID, "stop", nil)
}

func (s *HTTPSurface) post(ctx context.Context, userID, action string, p *Payload) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "liveActivity.http."+action)
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user", userID))

	var body io.Reader = http.NoBody
	if p != nil {
		encoded, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	endpoint, err := url.JoinPath(s.gatewayURL, "live-activity", userID, action)
	if err != nil {
		return fmt.Errorf("build gateway url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway %s responded %d: %s", action, resp.StatusCode, respBody)
	}
	return nil
}

// LogSurface only logs the payloads, for development.
type LogSurface struct{}

func (LogSurface) Start(_ context.Context, userID string, p Payload) error {
	log.Infof("live activity [%s] start: %s", userID, describe(p))
	return nil
}

func (LogSurface) Update(_ context.Context, userID string, p Payload) error {
	log.Infof("live activity [%s] update: %s", userID, describe(p))
	return nil
}

func (LogSurface) Stop(_ context.Context, userID string) error {
	log.Infof("live activity [%s] stop", userID)
	return nil
}

func describe(p Payload) string {
	deref := func(s *string) string {
		if s == nil {
			return "-"
		}
		return *s
	}
	return fmt.Sprintf("%s | %s | %s | prev %s", p.WorkoutTitle, deref(p.CurrentExercise), deref(p.SetLabel), deref(p.PrevLabel))
}
