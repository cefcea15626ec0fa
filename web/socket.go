package web

import (
	"context"
	"github.com/gorilla/websocket"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gridmap/location"
	"gridmap/naming"
	"net/http"
	"sync"
	"time"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 1 * time.Second
	// Maximum message size allowed from peer.
	maxMessageSize = 1024
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type ClickMessage struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type LocationMessage struct {
	Location *location.Location `json:"location,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// clickSession belongs to one websocket connection. Each click replaces the name lookup of the previous one, so the
// host only ever receives the location of the most recent click.
type clickSession struct {
	api        *Api
	conn       *websocket.Conn
	slot       *naming.Slot
	writeMutex *sync.Mutex
}

func (a *Api) handleSocket(writer http.ResponseWriter, request *http.Request) {
	conn, err := upgrader.Upgrade(writer, request, nil)
	if err != nil {
		sigolo.Errorf("Unable to upgrade websocket connection: %+v", err)
		return
	}
	defer conn.Close()

	session := &clickSession{
		api:        a,
		conn:       conn,
		slot:       naming.NewSlot(a.resolver),
		writeMutex: &sync.Mutex{},
	}
	defer session.slot.Close()

	sigolo.Debugf("Websocket connection from %s opened", request.RemoteAddr)
	err = session.run(request.Context())
	if err != nil && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		sigolo.Errorf("Websocket connection from %s failed: %+v", request.RemoteAddr, err)
		return
	}
	sigolo.Debugf("Websocket connection from %s closed", request.RemoteAddr)
}

func (s *clickSession) run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return s.readClicks(groupCtx)
	})
	group.Go(func() error {
		return s.pingPong(groupCtx)
	})
	group.Go(func() error {
		// Reading blocks until the connection is closed, so closing is the only way to end it early.
		<-groupCtx.Done()
		return s.conn.Close()
	})

	return group.Wait()
}

func (s *clickSession) readClicks(ctx context.Context) error {
	s.conn.SetReadLimit(maxMessageSize)
	err := s.conn.SetReadDeadline(time.Now().Add(pongWait))
	if err != nil {
		return err
	}
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		click := ClickMessage{}
		err = s.conn.ReadJSON(&click)
		if err != nil {
			return err
		}
		s.handleClick(ctx, orb.Point{click.X, click.Y})
	}
}

func (s *clickSession) handleClick(ctx context.Context, point orb.Point) {
	resolved, err := s.api.geometry.ResolvePoint(point)
	if err != nil {
		sigolo.Debugf("Ignore click outside of the world: %+v", err)
		s.write(LocationMessage{Error: err.Error()})
		return
	}

	s.slot.Submit(ctx, resolved.Cell, func(result naming.Result) {
		if result.Err != nil {
			sigolo.Debugf("No location for click at %v: %+v", point, result.Err)
			return
		}

		loc := s.api.presenter.Present(result.Name, point, resolved)
		s.write(LocationMessage{Location: &loc})
	})
}

func (s *clickSession) pingPong(ctx context.Context) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			if err != nil {
				return errors.Wrap(err, "Ping failed")
			}
		}
	}
}

func (s *clickSession) write(message LocationMessage) {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()

	err := s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err == nil {
		err = s.conn.WriteJSON(message)
	}
	if err != nil {
		sigolo.Debugf("Unable to write location message: %+v", err)
	}
}
