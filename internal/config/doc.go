// Package config provides tool settings for stagehand.
//
// Settings come from environment variables prefixed with STAGEHAND_ and from
// an optional .env file in the project directory. Nested keys map to
// underscores, so state.backend is read from STAGEHAND_STATE_BACKEND.
//
// # Sections
//   - Log: level and format of the process logger
//   - Roblox: session cookie, API base URLs and request timeout
//   - State: where deployment state lives (local file, S3 or MinIO)
//   - History: path of the deployment history database
//   - Apply: concurrency of deployments
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.State.Backend)
package config
