package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/paiflow/bootstrap"
	"github.com/kbukum/paiflow/event"
	"github.com/kbukum/paiflow/logger"
	"github.com/kbukum/paiflow/nodes"
	"github.com/kbukum/paiflow/storage"
	"github.com/kbukum/paiflow/store"
	"github.com/kbukum/paiflow/workflow"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := &Config{}
	cfg.Store.Driver = store.DriverMemory
	cfg.Storage.Provider = storage.ProviderMemory
	cfg.Storage.Enabled = true
	cfg.Storage.PublicURL = "http://localhost/files"
	return cfg
}

func newTestApp(t *testing.T, cfg *Config) *App {
	t.Helper()
	a, err := New(cfg, bootstrap.WithLogger(logger.Nop()), bootstrap.WithQuiet())
	require.NoError(t, err)
	return a
}

func echoWorkflow() *workflow.Workflow {
	return &workflow.Workflow{
		Name: "echo",
		Graph: workflow.Graph{
			Nodes: []workflow.Node{
				{ID: "in", Type: nodes.TypeInput},
				{ID: "out", Type: nodes.TypeOutput},
			},
			Edges: []workflow.Edge{{ID: "e1", Source: "in", Target: "out"}},
		},
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestConfig_Defaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ServiceName, cfg.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, store.DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, workflow.EngineDAG, cfg.Engine.DefaultType)
	assert.Equal(t, "http://localhost:8080/files", cfg.Storage.PublicURL)
}

func TestConfig_ValidateNamesSection(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	cfg.Store.Driver = "mongo"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store:")
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: flows
environment: staging
server:
  port: 9090
engine:
  default_type: langgraph
store:
  driver: memory
`), 0o600))
	t.Setenv("PAIFLOW_SERVER_RATE_LIMIT", "30")

	cfg, err := LoadConfig(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	cfg.ApplyDefaults()

	assert.Equal(t, "flows", cfg.Name)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Server.RateLimit)
	assert.Equal(t, workflow.EngineGraph, cfg.Engine.DefaultType)
	assert.Equal(t, store.DriverMemory, cfg.Store.Driver)
}

func TestNew_OptionalComponents(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	assert.Nil(t, a.Components.Get("redis"))
	assert.Nil(t, a.Components.Get("kafka"))

	cfg := testConfig(t)
	cfg.Redis.Enabled = true
	cfg.Kafka.Enabled = true
	cfg.Kafka.Brokers = []string{"broker-1:9092"}
	a = newTestApp(t, cfg)
	assert.NotNil(t, a.Components.Get("redis"))
	assert.NotNil(t, a.Components.Get("kafka"))
}

func TestConfig_ValidateOptionalSections(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	cfg.Kafka.Enabled = true
	cfg.Kafka.Compression = "brotli"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka:")
}

func TestNewRuntime_RegistersEveryNodeType(t *testing.T) {
	cfg := testConfig(t)
	cfg.ApplyDefaults()

	rt, err := NewRuntime(cfg, RuntimeDeps{Logger: logger.Nop()})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		nodes.TypeInput, nodes.TypeOutput, nodes.TypeOpenAI, nodes.TypeQwen,
		nodes.TypeZhipu, nodes.TypeDeepSeek, nodes.TypeAIPing, nodes.TypeTTS,
	}, rt.Executors.Types())
	assert.ElementsMatch(t, []string{workflow.EngineDAG, workflow.EngineGraph}, rt.Selector.Engines())
	assert.Equal(t, cfg.Engine.MaxConcurrent, rt.Slots.MaxConcurrent())
}

func TestExecute_PersistsRecord(t *testing.T) {
	a := newTestApp(t, testConfig(t))

	sink := &event.Collector{}
	wf := echoWorkflow()
	rec, err := a.Execute(context.Background(), wf, "hello", sink)
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, workflow.StatusSuccess, rec.Status)
	assert.Len(t, rec.NodeResults, 2)
	assert.NotEmpty(t, wf.ID, "the workflow is stored before it runs")
	kinds := sink.Kinds()
	require.NotEmpty(t, kinds)
	assert.Equal(t, event.WorkflowStart, kinds[0])
	assert.Equal(t, event.WorkflowComplete, kinds[len(kinds)-1])
}

func TestExecute_UnknownNodeTypeFails(t *testing.T) {
	a := newTestApp(t, testConfig(t))

	wf := echoWorkflow()
	wf.Graph.Nodes[1].Type = "telepathy"
	rec, err := a.Execute(context.Background(), wf, "hello", nil)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, workflow.StatusFailed, rec.Status)
	assert.NotEmpty(t, rec.ErrorMessage)
}

func TestServe_ExposesAPI(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = freePort(t)
	a := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var base string
	probe := make(chan error, 1)
	a.OnReady(func(context.Context) error {
		base = fmt.Sprintf("http://%s", a.Server().Addr())
		go func() {
			defer cancel()
			probe <- checkAPI(base)
		}()
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return")
	}
	require.NoError(t, <-probe)
}

func checkAPI(base string) error {
	resp, err := http.Get(base + "/health")
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health returned %d", resp.StatusCode)
	}

	resp, err = http.Get(base + "/api/node-types")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	var body struct {
		Data []string `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return err
	}
	if len(body.Data) != 8 {
		return fmt.Errorf("expected 8 node types, got %v", body.Data)
	}
	return nil
}
