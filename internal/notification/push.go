package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"hutplan-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// PushSink notifies the browsers subscribed to the event's room.
type PushSink struct {
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
}

// NewPushSink creates a sink sending through webpush.
func NewPushSink(db *gorm.DB, options *webpush.Options) *PushSink {
	return &PushSink{
		db:      db,
		webpush: options,
		sender:  &WebPushSender{},
	}
}

func (p *PushSink) Name() string { return "webpush" }

// Deliver sends the event to every subscription following the room.
func (p *PushSink) Deliver(ctx context.Context, ev AssignmentEvent) error {
	var subscriptions []model.PushSubscription
	err := p.db.WithContext(ctx).
		Joins("JOIN subscription_room_mapping srm ON srm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("srm.room_id = ?", ev.RoomID).
		Find(&subscriptions).Error
	if err != nil {
		return fmt.Errorf("failed to fetch subscriptions for room %d: %w", ev.RoomID, err)
	}
	if len(subscriptions) == 0 {
		return nil
	}

	log.Printf("Sending %d notifications for room %d", len(subscriptions), ev.RoomID)
	message := []byte(pushMessage(ev))
	for _, sub := range subscriptions {
		p.send(ctx, sub, message)
	}
	return nil
}

func pushMessage(ev AssignmentEvent) string {
	room := ev.RoomName
	if room == "" {
		room = "Zimmer " + strconv.FormatInt(ev.RoomID, 10)
	}
	from, to := ev.Arrival.Format("02.01."), ev.Departure.Format("02.01.")
	if ev.Kind == KindDeleted {
		return fmt.Sprintf("%s: Belegung %s bis %s entfernt", room, from, to)
	}
	return fmt.Sprintf("%s: %d Gäste %s bis %s", room, ev.Guests, from, to)
}

func (p *PushSink) send(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := p.sender.Send(payload, wpSub, p.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := p.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}

// Options builds the webpush options shared by the sink and the handlers.
func Options(publicKey, privateKey, subject string, ttl int) *webpush.Options {
	return &webpush.Options{
		Subscriber:      subject,
		VAPIDPublicKey:  publicKey,
		VAPIDPrivateKey: privateKey,
		TTL:             ttl,
		Urgency:         webpush.UrgencyNormal,
	}
}
