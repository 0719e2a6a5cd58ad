// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/rwinner/lib/channel"
	"github.com/bureau-foundation/rwinner/lib/endpoint"
	"github.com/bureau-foundation/rwinner/lib/event"
	"github.com/bureau-foundation/rwinner/lib/inject"
	"github.com/bureau-foundation/rwinner/lib/layout"
	"github.com/bureau-foundation/rwinner/lib/testutil"
)

var game = inject.Target{PID: 4242, Name: "RivalsofAether.exe"}

type fakeFinder struct {
	err       error
	requested string
}

func (f *fakeFinder) Find(ctx context.Context, name string) (inject.Target, error) {
	f.requested = name
	if f.err != nil {
		return inject.Target{}, f.err
	}
	return game, nil
}

// fakeInjector plays the agent: on Inject it runs agent, which connects
// to the controller's listeners the way the real module does on load.
type fakeInjector struct {
	controller *Controller
	agent      func(t *testing.T, conns *channel.Conns)
	injectErr  error
	ejectErr   error
	t          *testing.T

	mu       sync.Mutex
	injected []string
	ejected  []inject.Handle
}

func (f *fakeInjector) Inject(ctx context.Context, target inject.Target, modulePath string) (inject.Handle, error) {
	f.mu.Lock()
	f.injected = append(f.injected, modulePath)
	f.mu.Unlock()
	if f.injectErr != nil {
		return inject.Handle{}, f.injectErr
	}
	if f.agent != nil {
		endpoints := endpoint.Set{
			Data:  endpointOf(f.t, f.controller.DataAddr()),
			Debug: endpointOf(f.t, f.controller.DebugAddr()),
		}
		conns, err := channel.Dial(ctx, endpoints, time.Second)
		if err != nil {
			f.t.Fatalf("simulated agent dial: %v", err)
		}
		f.agent(f.t, conns)
	}
	return inject.Handle{Target: target, ModulePath: modulePath, ModuleBase: 0x7ff0_0000}, nil
}

func (f *fakeInjector) Eject(ctx context.Context, handle inject.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ejected = append(f.ejected, handle)
	return f.ejectErr
}

func endpointOf(t *testing.T, addr net.Addr) endpoint.Endpoint {
	t.Helper()
	tcp, ok := addr.(*net.TCPAddr)
	if !ok {
		t.Fatalf("address %v is not TCP", addr)
	}
	return endpoint.Endpoint{Host: tcp.IP.String(), Port: uint16(tcp.Port)}
}

// sendAndClose writes the given outcomes and debug text, then closes
// both channels as the agent does when the game exits.
func sendAndClose(debugText string, values ...float64) func(*testing.T, *channel.Conns) {
	return func(t *testing.T, conns *channel.Conns) {
		for _, value := range values {
			record := event.EncodeData(value)
			if _, err := conns.Data.Write(record[:]); err != nil {
				t.Fatalf("simulated agent data write: %v", err)
			}
		}
		if _, err := io.WriteString(conns.Debug, debugText); err != nil {
			t.Fatalf("simulated agent debug write: %v", err)
		}
		conns.Close()
	}
}

// syncBuffer is a bytes.Buffer safe for the relay goroutines.
type syncBuffer struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.String()
}

type harness struct {
	controller *Controller
	injector   *fakeInjector
	finder     *fakeFinder
	output     *syncBuffer
	logs       *syncBuffer
}

func newHarness(t *testing.T, forward endpoint.Endpoint) *harness {
	t.Helper()
	agentPath := filepath.Join(t.TempDir(), "rivals_rwinner.dll")
	if err := os.WriteFile(agentPath, []byte("MZ"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	h := &harness{
		finder: &fakeFinder{},
		output: &syncBuffer{},
		logs:   &syncBuffer{},
	}
	h.controller = &Controller{
		Endpoints: endpoint.Set{
			Data:    testutil.Ephemeral(),
			Debug:   testutil.Ephemeral(),
			Forward: forward,
		},
		Layout:      layout.Default(),
		AgentPath:   agentPath,
		Finder:      h.finder,
		Output:      h.output,
		Logger:      slog.New(slog.NewJSONHandler(h.logs, nil)),
		DialTimeout: time.Second,
	}
	h.injector = &fakeInjector{controller: h.controller, t: t}
	h.controller.Injector = h.injector
	return h
}

// payloads returns the payload of every "player won" log record.
func (h *harness) payloads(t *testing.T) []int32 {
	t.Helper()
	var result []int32
	for _, line := range strings.Split(strings.TrimSpace(h.logs.String()), "\n") {
		var record struct {
			Msg     string `json:"msg"`
			Payload int32  `json:"payload"`
		}
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("log line %q: %v", line, err)
		}
		if record.Msg == "player won" {
			result = append(result, record.Payload)
		}
	}
	return result
}

func TestRun_ForwardsOutcome(t *testing.T) {
	forwardListener := testutil.Listen(t)
	received := make(chan []byte, 1)
	go func() {
		connection, err := forwardListener.Accept()
		if err != nil {
			close(received)
			return
		}
		defer connection.Close()
		all, _ := io.ReadAll(connection)
		received <- all
	}()

	h := newHarness(t, testutil.EndpointOf(t, forwardListener))
	h.injector.agent = sendAndClose("", 2.0)

	if err := h.controller.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	forwarded := testutil.RequireReceive(t, received, 5*time.Second, "waiting for forwarded bytes")
	want := event.EncodeForward(2)
	if !bytes.Equal(forwarded, want[:]) {
		t.Errorf("forwarded %x, want exactly %x", forwarded, want)
	}
	if got := h.payloads(t); len(got) != 1 || got[0] != 2 {
		t.Errorf("logged payloads = %v, want [2]", got)
	}
	if h.finder.requested != "RivalsofAether.exe" {
		t.Errorf("searched for %q", h.finder.requested)
	}
	if len(h.injector.ejected) != 1 || h.injector.ejected[0].Target != game {
		t.Errorf("ejected = %v, want one handle for %v", h.injector.ejected, game)
	}
}

func TestRun_ForwardUnavailable(t *testing.T) {
	h := newHarness(t, testutil.ClosedEndpoint(t))
	h.injector.agent = sendAndClose("", 0, 1, 3.7, -1)

	if err := h.controller.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := h.payloads(t)
	want := []int32{0, 1, 3, -1}
	if len(got) != len(want) {
		t.Fatalf("logged payloads = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("payload %d = %d, want %d", i, got[i], want[i])
		}
	}
	if !strings.Contains(h.logs.String(), "continuing without forwarding") {
		t.Error("forward failure was not logged")
	}
}

func TestRun_DebugRelayedVerbatim(t *testing.T) {
	h := newHarness(t, testutil.ClosedEndpoint(t))
	h.injector.agent = sendAndClose("hello\n")

	if err := h.controller.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := h.output.String(); got != "hello\n" {
		t.Errorf("output = %q, want %q", got, "hello\n")
	}
}

func TestRun_TargetNotFound(t *testing.T) {
	h := newHarness(t, testutil.ClosedEndpoint(t))
	h.finder.err = inject.ErrProcessNotFound

	err := h.controller.Run(context.Background())
	if !errors.Is(err, inject.ErrProcessNotFound) {
		t.Fatalf("Run error = %v, want ErrProcessNotFound", err)
	}
	if len(h.injector.injected) != 0 {
		t.Error("injected without a target")
	}
	if h.controller.DebugAddr() != nil {
		t.Error("listeners bound without a target")
	}
}

func TestRun_BindFailure(t *testing.T) {
	occupied := testutil.Listen(t)
	h := newHarness(t, testutil.ClosedEndpoint(t))
	h.controller.Endpoints.Data = testutil.EndpointOf(t, occupied)

	if err := h.controller.Run(context.Background()); err == nil {
		t.Fatal("Run succeeded with the data port taken")
	}
	if len(h.injector.injected) != 0 {
		t.Error("injected although binding failed")
	}
}

func TestRun_InjectFailureClosesListeners(t *testing.T) {
	h := newHarness(t, testutil.ClosedEndpoint(t))
	h.injector.injectErr = errors.New("access denied")

	err := h.controller.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "access denied") {
		t.Fatalf("Run error = %v, want injection failure", err)
	}
	if _, err := net.DialTimeout("tcp", h.controller.DebugAddr().String(), time.Second); err == nil {
		t.Error("debug listener still accepting after failed injection")
	}
}

func TestRun_CancelledWhileWaitingForAgent(t *testing.T) {
	h := newHarness(t, testutil.ClosedEndpoint(t))
	ctx, cancel := context.WithCancel(context.Background())

	result := make(chan error, 1)
	go func() { result <- h.controller.Run(ctx) }()

	// Give Run time to reach the accept; a cancel before that point is
	// also a valid abort.
	time.Sleep(50 * time.Millisecond)
	cancel()

	err := testutil.RequireReceive(t, result, 5*time.Second, "waiting for Run to abort")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
}

func TestRun_EjectFailureIsNotFatal(t *testing.T) {
	h := newHarness(t, testutil.ClosedEndpoint(t))
	h.injector.agent = sendAndClose("", 1)
	h.injector.ejectErr = errors.New("process exited")

	if err := h.controller.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(h.logs.String(), "ejecting agent failed") {
		t.Error("eject failure was not logged")
	}
}

func TestRun_MissingAgentModuleStillInjects(t *testing.T) {
	h := newHarness(t, testutil.ClosedEndpoint(t))
	h.controller.AgentPath = filepath.Join(t.TempDir(), "missing.dll")
	h.injector.agent = sendAndClose("")

	if err := h.controller.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(h.injector.injected) != 1 {
		t.Errorf("injected %d times, want 1", len(h.injector.injected))
	}
}
