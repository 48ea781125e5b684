// Package store selects a record backend from configuration.
//
// The persistence contract itself lives in [record.Store]; this
// package maps a backend name from settings to a concrete
// implementation.
//
// # Available Backends
//
//   - store/fsstore writes one JSON file per task in a results directory
//   - store/bunstore archives records in SQLite through the Bun ORM
//   - store/memstore keeps records in memory, for development and testing
//
// # Usage
//
//	st, err := store.Open(ctx, store.Config{Kind: store.KindFS, Dir: "results"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
//
//	d, err := dispatch.New(exec, st)
package store
