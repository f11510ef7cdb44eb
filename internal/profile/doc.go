// Package profile implements the single-profile session store.
//
// The demo station supports exactly one local profile at a time: credentials
// plus up to four modality samples. The Store keeps the active profile in
// memory, persists every mutation to SQLite synchronously so a restart
// rehydrates the session, and delegates verification decisions to an
// injected Judge.
//
// Enrollment completion is a one-way latch: once three samples are present
// it stays set until the profile is cleared by logout.
//
// Credential handling diverges deliberately from the original demo, which
// compared plaintext passwords and stored an unused 32-bit checksum as its
// "hash". Here the login check uses Argon2id; the legacy checksum is still
// computed and stored (LegacyCheck) purely for export compatibility and is
// never consulted for verification.
package profile
