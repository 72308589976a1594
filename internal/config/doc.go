// Package config provides configuration parsing for graft projects.
//
// The configuration is stored in graft.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "hydrate": {
//	    "hydratedClass": "hydrated",
//	    "dir": "ltr"
//	  },
//	  "components": {
//	    "my-card": { "template": "components/my-card.html", "scoped": true }
//	  },
//	  "server": {
//	    "host": "localhost",
//	    "port": 4100,
//	    "maxBodyBytes": 4194304
//	  },
//	  "store": {
//	    "kind": "s3",
//	    "bucket": "my-site",
//	    "prefix": "pages/",
//	    "region": "eu-west-1",
//	    "precompress": true
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "graft"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	reg, err := cfg.Registry()
package config
