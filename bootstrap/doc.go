// Package bootstrap runs a paiflow process through a uniform lifecycle:
// start components, configure, ready check, serve (or run a task), then
// shut down in reverse order.
//
//	app, err := bootstrap.NewApp(cfg)
//	app.RegisterComponent(storeComponent)
//	app.RegisterComponent(serverComponent)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*app.Config]) error { ... })
//	err = app.Run(ctx)
package bootstrap
