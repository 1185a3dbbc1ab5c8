package linkcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher stores link reports in a NATS JetStream key-value bucket so
// other tooling can pick them up.
type Publisher struct {
	conn *nats.Conn
	kv   jetstream.KeyValue
}

// NewPublisher connects to NATS and gets or creates the report bucket.
func NewPublisher(ctx context.Context, url, bucket string) (*Publisher, error) {
	conn, err := nats.Connect(url, nats.Name("refdocs-link-checker"))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	kv, err := js.KeyValue(ctx, bucket)
	if err != nil {
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      bucket,
			Description: "Link check reports published by refdocs",
			History:     1,
		})
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("create KV bucket %q: %w", bucket, err)
		}
	}

	return &Publisher{conn: conn, kv: kv}, nil
}

// Publish stores the report under the module's key, replacing any earlier
// report for the same module and ref.
func (p *Publisher) Publish(ctx context.Context, report *Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal link report: %w", err)
	}

	key := Key(report.Module, report.Ref)
	if _, err := p.kv.Put(ctx, key, data); err != nil {
		return fmt.Errorf("put link report: %w", err)
	}

	slog.Debug("published link report",
		"key", key,
		"module", report.Module,
		"broken", report.Count(StatusBroken))
	return nil
}

// Close drops the NATS connection.
func (p *Publisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}

// Key maps a module path and ref onto the KV key alphabet. NATS keys
// only allow [-/_=.a-zA-Z0-9], so anything else becomes an underscore.
func Key(module, ref string) string {
	if ref == "" {
		ref = "head"
	}
	return sanitizeKey(module) + "=" + sanitizeKey(ref)
}

func sanitizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '/' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
