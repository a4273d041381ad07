package smtp

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"sync"
	"time"

	"github.com/proteq/go-email-service/internal/metrics"
)

const (
	dialTimeout = 10 * time.Second
	sendTimeout = 30 * time.Second
)

// Config holds SMTP transport configuration
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	PoolSize    int
	MaxMessages int
}

// pooledConn tracks how many messages a connection has carried so it can be
// rotated before the provider starts throttling it
type pooledConn struct {
	client *smtp.Client
	conn   net.Conn
	sent   int
}

// Pool manages a bounded set of reusable SMTP connections shared across
// requests. Connections are established lazily on first use and rotated
// after MaxMessages deliveries.
type Pool struct {
	idle   chan *pooledConn
	config Config
	mu     sync.Mutex
	closed bool
}

// NewPool creates a connection pool. No connection is dialed until the
// first send.
func NewPool(config Config) *Pool {
	if config.PoolSize <= 0 {
		config.PoolSize = 5
	}
	if config.MaxMessages <= 0 {
		config.MaxMessages = 100
	}

	return &Pool{
		idle:   make(chan *pooledConn, config.PoolSize),
		config: config,
	}
}

// Send delivers one message through a pooled connection
func (p *Pool) Send(from, to string, msg []byte) error {
	pc, err := p.get()
	if err != nil {
		return err
	}

	if err := p.transmit(pc, from, to, msg); err != nil {
		// The session may be mid-transaction; try to reset it before reuse
		if resetErr := pc.client.Reset(); resetErr != nil {
			p.discard(pc)
			return err
		}
		p.put(pc)
		return err
	}

	pc.sent++
	p.put(pc)
	return nil
}

func (p *Pool) transmit(pc *pooledConn, from, to string, msg []byte) error {
	pc.conn.SetDeadline(time.Now().Add(sendTimeout))
	defer pc.conn.SetDeadline(time.Time{})

	if err := pc.client.Mail(from); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := pc.client.Rcpt(to); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}

	w, err := pc.client.Data()
	if err != nil {
		return fmt.Errorf("opening data writer: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("writing message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("closing data writer: %w", err)
	}

	return nil
}

// get checks out an idle connection, probing it with NOOP, or dials a new
// one when the pool is empty
func (p *Pool) get() (*pooledConn, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, fmt.Errorf("connection pool is closed")
	}
	p.mu.Unlock()

	select {
	case pc := <-p.idle:
		metrics.SMTPConnections.Set(float64(len(p.idle)))
		if err := pc.client.Noop(); err != nil {
			pc.client.Quit()
			return p.dial()
		}
		return pc, nil
	default:
		return p.dial()
	}
}

// put returns a connection to the pool, rotating it once it has carried
// its message quota
func (p *Pool) put(pc *pooledConn) {
	if pc == nil {
		return
	}

	if pc.sent >= p.config.MaxMessages {
		p.discard(pc)
		return
	}

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		pc.client.Quit()
		return
	}

	select {
	case p.idle <- pc:
		metrics.SMTPConnections.Set(float64(len(p.idle)))
	default:
		pc.client.Quit()
	}
}

func (p *Pool) discard(pc *pooledConn) {
	pc.client.Quit()
	metrics.SMTPConnections.Set(float64(len(p.idle)))
}

// dial establishes and authenticates a new SMTP connection
func (p *Pool) dial() (*pooledConn, error) {
	addr := fmt.Sprintf("%s:%d", p.config.Host, p.config.Port)

	var conn net.Conn
	var err error

	if p.config.Port == 465 {
		conn, err = tls.DialWithDialer(
			&net.Dialer{Timeout: dialTimeout},
			"tcp", addr,
			&tls.Config{ServerName: p.config.Host, MinVersion: tls.VersionTLS12},
		)
	} else {
		conn, err = net.DialTimeout("tcp", addr, dialTimeout)
	}
	if err != nil {
		return nil, fmt.Errorf("dialing SMTP server: %w", err)
	}

	conn.SetDeadline(time.Now().Add(sendTimeout))

	client, err := smtp.NewClient(conn, p.config.Host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating SMTP client: %w", err)
	}

	if p.config.Port != 465 {
		if ok, _ := client.Extension("STARTTLS"); ok {
			tlsConfig := &tls.Config{ServerName: p.config.Host, MinVersion: tls.VersionTLS12}
			if err := client.StartTLS(tlsConfig); err != nil {
				client.Quit()
				return nil, fmt.Errorf("starting TLS: %w", err)
			}
		}
	}

	if p.config.Username != "" && p.config.Password != "" {
		auth := smtp.PlainAuth("", p.config.Username, p.config.Password, p.config.Host)
		if err := client.Auth(auth); err != nil {
			client.Quit()
			return nil, fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	conn.SetDeadline(time.Time{})

	return &pooledConn{client: client, conn: conn}, nil
}

// Close drains and quits every idle connection
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	close(p.idle)
	for pc := range p.idle {
		if pc != nil {
			pc.client.Quit()
		}
	}
	metrics.SMTPConnections.Set(0)
}

// Size returns the configured pool capacity
func (p *Pool) Size() int {
	return p.config.PoolSize
}
