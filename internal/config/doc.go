// Package config provides configuration parsing for authsync.
//
// The configuration is stored in authsync.json. Loading is layered:
// built-in defaults, then the JSON file, then AUTHSYNC_* environment
// variables. A missing file is not an error; the defaults describe a
// self-contained in-memory setup.
//
// # Configuration File Structure
//
//	{
//	  "name": "my-app",
//	  "server": {
//	    "port": 3000,
//	    "host": "localhost"
//	  },
//	  "channel": {
//	    "backend": "websocket",
//	    "websocket": { "url": "ws://localhost:3000/sync" }
//	  },
//	  "sync": {
//	    "crossIsland": true,
//	    "crossTab": true
//	  },
//	  "hydration": {
//	    "strategy": "lazy",
//	    "waitTimeout": "3s",
//	    "pollInterval": "150ms"
//	  }
//	}
//
// # Environment Overrides
//
//	AUTHSYNC_HOST, AUTHSYNC_PORT
//	AUTHSYNC_CHANNEL        memory | websocket | blob
//	AUTHSYNC_WS_URL
//	AUTHSYNC_BLOB_BUCKET, AUTHSYNC_BLOB_PREFIX,
//	AUTHSYNC_BLOB_KEY, AUTHSYNC_BLOB_REGION
//	AUTHSYNC_STRATEGY       immediate | lazy | onVisible | onIdle
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Addr:", cfg.Address())
package config
