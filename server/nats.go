package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// DefaultNATSSubject prefixes the NATS selection subjects: requests go to
// <prefix>.one and <prefix>.subset.
const DefaultNATSSubject = "sieve.select"

// ServeNATS answers selection requests published to subject.one and
// subject.subset with the same bodies as the HTTP endpoints. Servers sharing a
// queue group split the requests. It blocks until ctx is done and then drains
// its subscriptions.
func (s *Server) ServeNATS(ctx context.Context, nc *nats.Conn, subject, queue string) error {
	if subject == "" {
		subject = DefaultNATSSubject
	}

	var subs []*nats.Subscription
	for _, mode := range []string{modeOne, modeSubset} {
		sub, err := nc.QueueSubscribe(subject+"."+mode, queue, s.natsHandler(mode))
		if err != nil {
			for _, prev := range subs {
				_ = prev.Unsubscribe()
			}
			return fmt.Errorf("could not subscribe to %s.%s: %w", subject, mode, err)
		}
		subs = append(subs, sub)
	}

	if err := nc.Flush(); err != nil {
		return fmt.Errorf("could not flush subscriptions: %w", err)
	}

	s.logger.Info("serving selections over NATS",
		zap.String("subject", subject+".>"),
		zap.String("queue", queue),
	)

	<-ctx.Done()

	for _, sub := range subs {
		if err := sub.Drain(); err != nil {
			s.logger.Warn("could not drain subscription", zap.String("subject", sub.Subject), zap.Error(err))
		}
	}
	return nil
}

func (s *Server) natsHandler(mode string) nats.MsgHandler {
	return func(msg *nats.Msg) {
		reply, err := s.natsReply(mode, msg.Data)
		if err != nil {
			reply, _ = json.Marshal(ErrorResponse{Error: err.Error(), Code: statusFor(err)})
		}

		if err := msg.Respond(reply); err != nil {
			s.logger.Warn("could not respond to selection request",
				zap.String("subject", msg.Subject),
				zap.Error(err),
			)
		}
	}
}

func (s *Server) natsReply(mode string, data []byte) ([]byte, error) {
	req, err := decodeRequest(data)
	if err != nil {
		return nil, err
	}

	var resp any
	if mode == modeOne {
		resp, err = s.selectOne(req)
	} else {
		resp, err = s.selectSubset(req)
	}
	if err != nil {
		return nil, err
	}

	return json.Marshal(resp)
}
