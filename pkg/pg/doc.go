// Package pg connects to PostgreSQL through a pgx/v5 pool and applies goose
// migrations from an fs.FS, usually an embedded directory.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrations.FS, cfg, log); err != nil {
//		return err
//	}
//
// Healthcheck adapts the pool to a readiness check. IsNotFoundError
// classifies driver errors without importing pgx in callers.
package pg
