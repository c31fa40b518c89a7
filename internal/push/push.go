// Package push sends web push notifications to household members.
package push

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/mlecomte/foyer/internal/model"
	"github.com/mlecomte/foyer/internal/store"
)

// ErrExpired is returned when a push subscription is no longer valid (410 Gone).
var ErrExpired = errors.New("push subscription expired")

// Payload is the JSON sent to the push service.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// Service sends web push notifications and prunes expired subscriptions.
// Without VAPID keys the service is disabled and every notify is a no-op.
type Service struct {
	publicKey  string
	privateKey string
	users      *store.UserStore
	subs       *store.PushStore
	logger     *slog.Logger

	// Overridable transport for tests.
	send func(data []byte, sub *model.PushSubscription) error
}

// NewService creates a push service with VAPID keys.
func NewService(publicKey, privateKey string, users *store.UserStore, subs *store.PushStore, logger *slog.Logger) *Service {
	s := &Service{
		publicKey:  publicKey,
		privateKey: privateKey,
		users:      users,
		subs:       subs,
		logger:     logger,
	}
	s.send = s.sendWebPush
	return s
}

// Enabled reports whether VAPID keys are configured.
func (s *Service) Enabled() bool {
	return s.publicKey != "" && s.privateKey != ""
}

// VAPIDPublicKey returns the VAPID public key for client-side subscription.
func (s *Service) VAPIDPublicKey() string {
	return s.publicKey
}

// NotifyItemAdded pushes a notification to a user's devices when someone adds
// an item to their household's list. Skipped entirely when the user has
// notifications turned off. Expired subscriptions are pruned as they are
// discovered; other send failures are logged and do not stop the fan-out.
func (s *Service) NotifyItemAdded(userID int64, householdName, itemName string) {
	if !s.Enabled() {
		return
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		s.logger.Error("load user for push", "user_id", userID, "error", err)
		return
	}
	if user == nil || !user.NotificationsEnabled {
		return
	}

	subs, err := s.subs.ListByUser(userID)
	if err != nil {
		s.logger.Error("list push subscriptions", "user_id", userID, "error", err)
		return
	}

	payload := Payload{
		Title: householdName,
		Body:  fmt.Sprintf("%s was added to the shopping list", itemName),
		Tag:   "shopping-item",
	}
	for i := range subs {
		if err := s.Send(&subs[i], payload); err != nil {
			if errors.Is(err, ErrExpired) {
				if err := s.subs.DeleteByEndpoint(subs[i].UserID, subs[i].Endpoint); err != nil {
					s.logger.Error("prune expired subscription", "error", err)
				}
				continue
			}
			s.logger.Error("send push", "user_id", userID, "error", err)
		}
	}
}

// Send sends a push notification to a single subscription.
func (s *Service) Send(sub *model.PushSubscription, payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return s.send(data, sub)
}

func (s *Service) sendWebPush(data []byte, sub *model.PushSubscription) error {
	resp, err := webpush.SendNotification(data, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, &webpush.Options{
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		Subscriber:      "mailto:noreply@foyer.app",
		TTL:             86400,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		return ErrExpired
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}
	return nil
}

// GenerateVAPIDKeys generates a new ECDSA P-256 key pair for VAPID.
func GenerateVAPIDKeys() (publicKey, privateKey string, err error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("generate ECDSA key: %w", err)
	}

	pubBytes := elliptic.Marshal(elliptic.P256(), key.PublicKey.X, key.PublicKey.Y)
	publicKey = base64.RawURLEncoding.EncodeToString(pubBytes)
	privateKey = base64.RawURLEncoding.EncodeToString(key.D.Bytes())

	return publicKey, privateKey, nil
}
