// Package storage provides object storage with pluggable backends. The TTS
// node writes merged audio through it and the HTTP server serves objects
// back from /files.
//
// # Backends
//
//   - storage/local: local filesystem
//   - storage/s3: Amazon S3 and S3-compatible services (MinIO)
//   - storage/memory: in-process map for tests and ephemeral runs
//
// Backends register themselves on import:
//
//	import _ "github.com/kbukum/paiflow/storage/local"
//
//	s, err := storage.New(storage.Config{Provider: "local", BasePath: "./data"}, log)
//	url, err := storage.Put(ctx, s, "audio/a.wav", wav, "audio/wav")
//
// # Configuration
//
//	storage:
//	  enabled: true
//	  provider: "s3"
//	  bucket: "paiflow"
//	  endpoint: "http://localhost:9000"
//	  public_url: "http://localhost:9000/paiflow"
package storage
