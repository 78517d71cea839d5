// FILE: example/fasthttp/main.go
package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lixenwraith/pactffi"
	"github.com/lixenwraith/pactffi/compat"
	"github.com/valyala/fasthttp"
)

var specsByName = map[string]pactffi.Specification{
	"v1":   pactffi.SpecV1,
	"v1.1": pactffi.SpecV1_1,
	"v2":   pactffi.SpecV2,
	"v3":   pactffi.SpecV3,
	"v4":   pactffi.SpecV4,
}

type inspection struct {
	Description    string            `json:"description,omitempty"`
	Contents       string            `json:"contents,omitempty"`
	Metadata       map[string]string `json:"metadata"`
	ProviderStates []inspectedState  `json:"providerStates"`
	Errors         []string          `json:"errors,omitempty"`
}

type inspectedState struct {
	Name   string            `json:"name"`
	Params map[string]string `json:"params,omitempty"`
}

func main() {
	// Create and configure the context
	ctx, err := pactffi.NewBuilder().
		Format("txt").
		BufferCapacity(64 * 1024).
		Build()
	if err != nil {
		panic(err)
	}
	defer ctx.Close()

	ctx.LoggerInit()
	if err := ctx.LoggerAttachSink("stdout", pactffi.FilterInfo); err != nil {
		panic(err)
	}
	if err := ctx.LoggerApply(); err != nil {
		panic(err)
	}

	// Create fasthttp adapter with custom level detection
	fasthttpAdapter, err := compat.NewBuilder().WithContext(ctx).BuildFastHTTP(
		compat.WithDefaultLevel(pactffi.LevelInfo),
		compat.WithLevelDetector(customLevelDetector),
	)
	if err != nil {
		panic(err)
	}

	server := &fasthttp.Server{
		Handler: func(rc *fasthttp.RequestCtx) { inspectHandler(ctx, rc) },
		Logger:  fasthttpAdapter,

		Name:               "pactffi-inspector",
		Concurrency:        fasthttp.DefaultConcurrency,
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       10 * time.Second,
		IdleTimeout:        120 * time.Second,
		MaxRequestBodySize: 1 << 20,
		TCPKeepalive:       true,
	}

	fmt.Println("Starting message inspector on :8080")
	fmt.Println(`Try: curl -d '{"description":"hi","metadata":{"a":"b"}}' 'localhost:8080/inspect?spec=v3'`)
	if err := server.ListenAndServe(":8080"); err != nil {
		panic(err)
	}
}

// inspectHandler decodes the request body as a message and reports what the
// library saw
func inspectHandler(ctx *pactffi.Context, rc *fasthttp.RequestCtx) {
	if !rc.IsPost() || string(rc.Path()) != "/inspect" {
		rc.Error("POST /inspect", fasthttp.StatusNotFound)
		return
	}

	spec := pactffi.SpecV4
	if name := strings.ToLower(string(rc.QueryArgs().Peek("spec"))); name != "" {
		s, ok := specsByName[name]
		if !ok {
			rc.Error(fmt.Sprintf("unknown spec %q", name), fasthttp.StatusBadRequest)
			return
		}
		spec = s
	}

	msg, err := ctx.MessageNewFromJSON(0, rc.PostBody(), spec)
	if err != nil {
		rc.Error(ctx.LastError(), fasthttp.StatusUnprocessableEntity)
		return
	}
	defer ctx.MessageDelete(msg)

	out, err := inspect(ctx, msg)
	if err != nil {
		out.Errors = append(out.Errors, err.Error())
	}

	body, err := json.Marshal(out)
	if err != nil {
		rc.Error(err.Error(), fasthttp.StatusInternalServerError)
		return
	}
	rc.SetContentType("application/json")
	rc.SetBody(body)
}

func inspect(ctx *pactffi.Context, msg pactffi.Handle) (inspection, error) {
	out := inspection{Metadata: map[string]string{}}
	if desc, ok, err := ctx.MessageDescription(msg); err != nil {
		return out, err
	} else if ok {
		out.Description = desc
	}
	if contents, ok, err := ctx.MessageContents(msg); err != nil {
		return out, err
	} else if ok {
		out.Contents = contents
	}

	it, err := ctx.MessageMetadataIter(msg)
	if err != nil {
		return out, err
	}
	defer ctx.MetadataIterDelete(it)
	for {
		ph, ok, err := ctx.MetadataIterNext(it)
		if err != nil {
			return out, err
		}
		if !ok {
			break
		}
		pair, err := ctx.MetadataPair(ph)
		_ = ctx.MetadataPairDelete(ph)
		if err != nil {
			return out, err
		}
		out.Metadata[pair.Key] = pair.Value
	}

	sit, err := ctx.MessageProviderStateIter(msg)
	if err != nil {
		return out, err
	}
	defer ctx.ProviderStateIterDelete(sit)
	for {
		ps, ok, err := ctx.ProviderStateIterNext(sit)
		if err != nil {
			return out, err
		}
		if !ok {
			break
		}
		state := inspectedState{Name: ps.Name}
		for _, p := range ps.SortedParams() {
			if state.Params == nil {
				state.Params = map[string]string{}
			}
			state.Params[p.Key] = p.Value
		}
		out.ProviderStates = append(out.ProviderStates, state)
	}
	return out, nil
}

func customLevelDetector(msg string) (int64, bool) {
	// fasthttp specific messages first
	if strings.Contains(msg, "connection cannot be served") {
		return pactffi.LevelWarn, true
	}
	if strings.Contains(msg, "error when serving connection") {
		return pactffi.LevelError, true
	}

	// Use default detection
	return compat.DetectLogLevel(msg)
}
