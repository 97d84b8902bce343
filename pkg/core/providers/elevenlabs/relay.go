package elevenlabs

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const relayWriteTimeout = 5 * time.Second

// relayPool holds one websocket channel per remote conversation. Channels
// are dialed lazily on the first chunk and dropped on any write failure; the
// next chunk redials. Losing a channel loses nothing durable, since every
// chunk is also buffered in the session.
type relayPool struct {
	client *Client

	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

func newRelayPool(client *Client) *relayPool {
	return &relayPool{
		client: client,
		conns:  make(map[string]*websocket.Conn),
	}
}

func (p *relayPool) send(ctx context.Context, conversationID string, audio []byte) error {
	conn, err := p.conn(ctx, conversationID)
	if err != nil {
		return err
	}

	payload := map[string]string{
		"user_audio_chunk": base64.StdEncoding.EncodeToString(audio),
	}
	_ = conn.SetWriteDeadline(time.Now().Add(relayWriteTimeout))
	if err := conn.WriteJSON(payload); err != nil {
		p.drop(conversationID)
		return fmt.Errorf("relay write: %w", err)
	}
	return nil
}

func (p *relayPool) conn(ctx context.Context, conversationID string) (*websocket.Conn, error) {
	p.mu.Lock()
	if conn, ok := p.conns[conversationID]; ok {
		p.mu.Unlock()
		return conn, nil
	}
	p.mu.Unlock()

	// Dial without holding the pool lock: one slow handshake must not stall
	// relays for every other conversation.
	u, err := url.Parse(p.client.wsBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid relay ws url: %w", err)
	}
	q := u.Query()
	q.Set("conversation_id", conversationID)
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("xi-api-key", p.client.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("relay dial: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.conns[conversationID]; ok {
		// Lost a dial race for the same conversation; keep the first channel.
		_ = conn.Close()
		return existing, nil
	}
	p.conns[conversationID] = conn
	return conn, nil
}

func (p *relayPool) drop(conversationID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if conn, ok := p.conns[conversationID]; ok {
		_ = conn.Close()
		delete(p.conns, conversationID)
	}
}

func (p *relayPool) closeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, conn := range p.conns {
		_ = conn.Close()
		delete(p.conns, id)
	}
}
