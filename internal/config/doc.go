// Package config loads loom's runtime and tooling configuration.
//
// Settings come, in increasing priority, from built-in defaults, a loom.yaml
// (or loom.json, loom.toml) file, LOOM_-prefixed environment variables and
// explicitly set overrides such as CLI flags. Nested keys map to environment
// variables with dots replaced by underscores:
//
//	snapshots.s3.bucket  ->  LOOM_SNAPSHOTS_S3_BUCKET
//
// # Configuration File Structure
//
//	debug: false
//	log:
//	  level: info
//	  format: text
//	runtime:
//	  queue_size: 256
//	metrics:
//	  namespace: loom
//	inspector:
//	  addr: 127.0.0.1:7070
//	snapshots:
//	  dir: .loom/snapshots
//	  s3:
//	    bucket: my-bucket
//	    prefix: loom/
//	    region: eu-west-1
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Inspector:", cfg.Inspector.Addr)
package config
