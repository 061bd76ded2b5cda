package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/zeu5/overcooked-rl/overcooked"
)

// frame is sent to watchers after every step
type frame struct {
	Time     int      `json:"time"`
	Actions  []string `json:"actions"`
	Reward   float64  `json:"reward"`
	Terminal bool     `json:"terminal"`
	Render   string   `json:"render"`
}

func newFrame(actions [overcooked.NumAgents]overcooked.Action, result overcooked.StepResult) frame {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = a.String()
	}
	return frame{
		Time:     result.State.Time,
		Actions:  names,
		Reward:   result.Reward,
		Terminal: result.AllDone,
		Render:   overcooked.Render(result.State),
	}
}

// broadcast drops frames for watchers that fall behind, caller holds the session lock
func (s *session) broadcast(f frame) {
	for _, ch := range s.watchers {
		select {
		case ch <- f:
		default:
		}
	}
}

func (s *session) addWatcher() (int, chan frame) {
	s.lock.Lock()
	defer s.lock.Unlock()
	id := s.nextWatcher
	s.nextWatcher++
	ch := make(chan frame, 64)
	s.watchers[id] = ch
	return id, ch
}

func (s *session) removeWatcher(id int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if ch, ok := s.watchers[id]; ok {
		close(ch)
		delete(s.watchers, id)
	}
}

func (s *session) closeWatchers() {
	s.lock.Lock()
	defer s.lock.Unlock()
	for id, ch := range s.watchers {
		close(ch)
		delete(s.watchers, id)
	}
}

func (s *Server) handleWatch(c *gin.Context) {
	sess, err := s.getSession(c.Param("id"))
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	id, frames := sess.addWatcher()
	defer sess.removeWatcher(id)

	// the client only sends control frames, reading detects the close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-s.ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), time.Now().Add(time.Second))
			return
		case <-closed:
			return
		case f, ok := <-frames:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "episode deleted"), time.Now().Add(time.Second))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(f); err != nil {
				return
			}
		}
	}
}
