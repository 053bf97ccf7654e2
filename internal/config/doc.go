// Package config provides configuration parsing for the observable feed
// server.
//
// The configuration is stored in observable.json. Every field is optional;
// a missing file or field falls back to the defaults returned by New.
//
// # Configuration File Structure
//
//	{
//	  "name": "entries",
//	  "server": {
//	    "host": "localhost",
//	    "port": 8080,
//	    "shutdownTimeout": "10s",
//	    "writeTimeout": "5s",
//	    "pingInterval": "30s",
//	    "sendBuffer": 64,
//	    "maxClients": 0,
//	    "mutationRate": 0,
//	    "mutationBurst": 0
//	  },
//	  "log": {"level": "info", "format": "text"},
//	  "metrics": {"enabled": true, "namespace": "observable"},
//	  "tracing": {"enabled": false, "tracerName": "observable"},
//	  "seed": [{"id": 1, "name": "One"}, {"id": 2, "name": "Two"}]
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
