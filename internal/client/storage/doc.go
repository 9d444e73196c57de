// Package storage persists client state (session user, token, theme) in a
// local SQLite file.
//
// The store is a flat key/value table. Values are opaque bytes; callers
// decide the encoding (JSON for the user record, raw bytes for the token).
// Get of a missing key returns (nil, nil).
//
// Multi-key writes that must be observed together go through Update, which
// runs the callback inside a single transaction:
//
//	err := st.Update(ctx, func(ctx context.Context, tx storage.Store) error {
//	    if err := tx.Set(ctx, storage.KeyUser, userJSON); err != nil {
//	        return err
//	    }
//	    return tx.Set(ctx, storage.KeyToken, []byte(token))
//	})
package storage
