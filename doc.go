// Package mongostore provides a MongoDB-backed session store for Go web applications.
//
// The store implements the persistence contract expected by generic session
// middleware (Get/Set/Destroy/Clear) on top of the official MongoDB driver,
// with lazy expiry on read, a TTL index as a backstop for sessions that are
// never re-read, and last-write-wins upsert semantics for concurrent writers.
//
// # Connection Lifecycle
//
// The store connects asynchronously. Operations issued before the connection
// is established are buffered and replayed in call order once the store is
// ready, so the store can be constructed before the rest of the application
// has finished wiring up:
//
//	import "github.com/dmitrymomot/mongostore"
//
//	store, err := mongostore.New(
//		mongostore.WithURI("mongodb://localhost:27017/myapp"),
//		mongostore.WithCollection("sessions"),
//		mongostore.WithTTL(14*24*time.Hour),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Optionally block until the connection is established.
//	if err := store.WaitReady(ctx); err != nil {
//		log.Fatal(err)
//	}
//
// If connecting or creating the TTL index fails, the store transitions to a
// terminal failed state: buffered operations fail with the connection error,
// registered error listeners are notified, and a failure nobody is listening
// for panics rather than disappearing silently.
//
// # Configuration
//
// Configuration can be loaded from environment variables and layered with
// functional options:
//
//	MONGOSTORE_URI                  (default: mongodb://localhost:27017/connect_mongodb_session_test)
//	MONGOSTORE_COLLECTION           (default: sessions)
//	MONGOSTORE_DATABASE             (default: database from the URI path)
//	MONGOSTORE_TTL                  (default: 336h, i.e. 14 days)
//	MONGOSTORE_ID_FIELD             (default: _id)
//	MONGOSTORE_EXPIRES_FIELD        (default: expires)
//	MONGOSTORE_EXPIRE_AFTER_SECONDS (default: 0)
//	MONGOSTORE_CONNECT_TIMEOUT      (default: 10s)
//
//	cfg, err := mongostore.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//	store, err := mongostore.New(mongostore.WithConfig(cfg))
//
// # Session Documents
//
// One document is stored per session, shaped as
//
//	{ <idField>: <session id>, "session": <payload>, <expiresField>: <expiry> }
//
// The expiry is taken from the payload's cookie when it carries one, and
// computed as now+TTL otherwise. A Get that finds an expired document deletes
// it and reports the session as missing.
//
// # Notifications
//
// Listeners can subscribe to connection events:
//
//	store.OnceConnected(func() { log.Println("session store ready") })
//	store.OnError(func(err error) { log.Println("session store:", err) })
//
// # Testing
//
// The database capability is injected via the Connector option, so tests can
// substitute an in-memory implementation without a running MongoDB:
//
//	store, err := mongostore.New(mongostore.WithConnector(fakeConnector))
package mongostore
