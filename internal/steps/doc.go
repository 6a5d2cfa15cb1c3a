// Package steps provides the stock route steps most routes start with:
// request ids, CORS headers, a server error helper and per-request config.
//
//	h := route.Create(
//		steps.WithRequestID(),
//		steps.CORS(cfg.CORS),
//		steps.WithServerError(),
//		steps.WithConfig(func() (*envconfig.Object, error) {
//			return envconfig.LoadFromEnv([]string{"DATABASE_URL"})
//		}),
//		handler,
//	)
package steps
