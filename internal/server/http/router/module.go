package router

import (
	"go.uber.org/fx"

	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Options(
	fx.Provide(Setup),
	fx.Provide(func(g *pkgAuth.AdminGuard) middleware.AdminAuthorizer { return g }),
)
