package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fieldwave/fieldwave-core/internal/sensor"
)

// Maximum payload size for MQTT messages (1MB).
// This prevents resource exhaustion and aligns with typical broker limits.
const maxPayloadSize = 1 << 20 // 1MB

// telemetryTopic is the topic prefix samples are mirrored under.
// The series name forms the final segment.
const telemetryTopic = "fieldwave/telemetry/%s"

// samplePayload is the JSON wire shape of a mirrored sample.
type samplePayload struct {
	Series string    `json:"series"`
	Time   time.Time `json:"time"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
}

// PublishSample mirrors one sensor sample to the telemetry topic.
//
// Implements sensor.Mirror. The publish uses the configured QoS and is
// not retained: the mirror is a live feed, not a state store.
//
// Parameters:
//   - s: Sample to mirror
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (c *Client) PublishSample(s sensor.Sample) error {
	payload, err := json.Marshal(samplePayload{
		Series: s.Series,
		Time:   s.Time,
		X:      s.X,
		Y:      s.Y,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	topic := fmt.Sprintf(telemetryTopic, s.Series)
	return c.Publish(topic, payload, byte(c.cfg.QoS), false)
}

// Publish sends a message to the specified MQTT topic.
//
// Parameters:
//   - topic: The topic to publish to
//   - payload: The message payload (typically JSON, max 1MB)
//   - qos: Quality of Service level (0, 1, or 2)
//   - retained: Whether the broker should retain the message for new subscribers
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	// Validate inputs
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	// Check connection state
	if !c.IsConnected() {
		return ErrNotConnected
	}

	// Publish with timeout
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}
