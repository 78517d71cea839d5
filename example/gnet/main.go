// FILE: example/gnet/main.go
package main

import (
	"bytes"
	"fmt"

	"github.com/lixenwraith/pactffi"
	"github.com/lixenwraith/pactffi/compat"
	"github.com/panjf2000/gnet/v2"
)

// messageServer reads one message JSON document per line and answers with
// its description and metadata count
type messageServer struct {
	gnet.BuiltinEventEngine

	ctx    *pactffi.Context
	logger gnetLogger
}

type gnetLogger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

func (s *messageServer) OnBoot(eng gnet.Engine) gnet.Action {
	s.logger.Infof("server booted")
	return gnet.None
}

func (s *messageServer) OnTraffic(c gnet.Conn) gnet.Action {
	buf, _ := c.Next(-1)
	for _, line := range bytes.Split(buf, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		c.Write(s.describe(line))
	}
	return gnet.None
}

func (s *messageServer) describe(doc []byte) []byte {
	msg, err := s.ctx.MessageNewFromJSON(0, doc, pactffi.SpecV4)
	if err != nil {
		s.logger.Warnf("rejected document bytes=%d", len(doc))
		return []byte("error: " + s.ctx.LastError() + "\n")
	}
	defer s.ctx.MessageDelete(msg)

	desc, _, _ := s.ctx.MessageDescription(msg)
	count := 0
	if it, err := s.ctx.MessageMetadataIter(msg); err == nil {
		for {
			ph, ok, err := s.ctx.MetadataIterNext(it)
			if err != nil || !ok {
				break
			}
			_ = s.ctx.MetadataPairDelete(ph)
			count++
		}
		_ = s.ctx.MetadataIterDelete(it)
	}
	s.logger.Infof("described message metadata=%d", count)
	return []byte(fmt.Sprintf("ok: %q metadata=%d\n", desc, count))
}

func main() {
	ctx, err := pactffi.NewBuilder().Format("json").Build()
	if err != nil {
		panic(err)
	}
	defer ctx.Close()

	ctx.LoggerInit()
	if err := ctx.LoggerAttachSink("stdout", pactffi.FilterDebug); err != nil {
		panic(err)
	}
	if err := ctx.LoggerApply(); err != nil {
		panic(err)
	}

	// Structured adapter turns "key=%d" pairs into JSON fields
	gnetAdapter, err := compat.NewBuilder().WithContext(ctx).BuildStructuredGnet()
	if err != nil {
		panic(err)
	}

	err = gnet.Run(
		&messageServer{ctx: ctx, logger: gnetAdapter},
		"tcp://127.0.0.1:9000",
		gnet.WithMulticore(true),
		gnet.WithLogger(gnetAdapter),
		gnet.WithReusePort(true),
	)
	if err != nil {
		panic(err)
	}
}
