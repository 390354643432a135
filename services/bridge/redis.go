package bridge

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/garyburd/redigo/redis"
	"github.com/golang/glog"
)

// redisBroker maps the bridge onto Redis pub/sub. Retained publishes also
// SET the topic key, so a late reader can GET the last state.
type redisBroker struct {
	addr string
	lost lostSignal

	mu  sync.Mutex
	pub redis.Conn
	sub *redis.PubSubConn
}

func isRedisURL(s string) bool {
	return strings.HasPrefix(s, "redis://") || strings.HasPrefix(s, "rediss://")
}

// redisDialURL splits redis://host:port[/db][/prefix] into the address
// redigo dials and the topic prefix.
func redisDialURL(serverURL string) (addr, prefix string, err error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", "", err
	}
	parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
	db := ""
	if _, err := strconv.Atoi(parts[0]); err == nil {
		db, parts = parts[0], parts[1:]
	}
	prefix = strings.Join(parts, "/")
	u.Path, u.RawPath = "", ""
	if db != "" {
		u.Path = "/" + db
	}
	return u.String(), prefix, nil
}

// DialRedis prepares a Redis broker. Nothing connects until Connect.
func DialRedis(serverURL string) (Broker, error) {
	addr, _, err := redisDialURL(serverURL)
	if err != nil {
		return nil, err
	}
	return &redisBroker{addr: addr, lost: newLostSignal()}, nil
}

func (r *redisBroker) dial(ctx context.Context) (redis.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := 5 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}
	return redis.DialURL(r.addr, redis.DialConnectTimeout(timeout))
}

func (r *redisBroker) Connect(ctx context.Context) error {
	r.Close()
	pub, err := r.dial(ctx)
	if err != nil {
		return err
	}
	sc, err := r.dial(ctx)
	if err != nil {
		pub.Close()
		return err
	}
	r.mu.Lock()
	r.pub, r.sub = pub, &redis.PubSubConn{Conn: sc}
	r.mu.Unlock()
	r.lost.clear()
	glog.Info("bridge: connected to redis")
	return nil
}

func (r *redisBroker) Publish(topic string, payload []byte, retained bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pub == nil {
		return errNotConnected
	}
	if retained {
		if _, err := r.pub.Do("SET", topic, payload); err != nil {
			return err
		}
	}
	_, err := r.pub.Do("PUBLISH", topic, payload)
	return err
}

func (r *redisBroker) Subscribe(topic string, fn func(string, []byte)) error {
	r.mu.Lock()
	sub := r.sub
	r.mu.Unlock()
	if sub == nil {
		return errNotConnected
	}
	if err := sub.Subscribe(topic); err != nil {
		return err
	}
	go func() {
		for {
			switch m := sub.Receive().(type) {
			case redis.Message:
				fn(m.Channel, m.Data)
			case error:
				glog.V(1).Infof("bridge: redis subscription ended: %v", m)
				// A subscription replaced or closed by us is not a loss.
				r.mu.Lock()
				current := r.sub == sub
				r.mu.Unlock()
				if current {
					r.lost.raise(m)
				}
				return
			}
		}
	}()
	return nil
}

func (r *redisBroker) Lost() <-chan error { return r.lost }

func (r *redisBroker) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pub != nil {
		r.pub.Close()
		r.pub = nil
	}
	if r.sub != nil {
		r.sub.Close()
		r.sub = nil
	}
}
