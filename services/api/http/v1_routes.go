package http

// registerV1Routes sets up the v1 API structure
// Groups: /api/v1/core, /territory, /distribution, /quality, /export
func (s *Server) registerV1Routes() {
	v1 := s.engine.Group("/api/v1")
	v1.Use(apiVersionMiddleware()) // Add X-API-Version: v1 header
	if s.cfg.BearerToken != "" {
		v1.Use(bearerAuthMiddleware(s.cfg.BearerToken))
	}

	// Core endpoints - headline metrics, map points and run history
	core := v1.Group("/core")
	{
		core.GET("/kpis", s.handleV1KPIs)
		core.GET("/points", s.handleV1Points)
		core.GET("/runs", s.handleV1Runs)
	}

	// Territory endpoints - per-department rankings and coverage
	territory := v1.Group("/territory")
	{
		territory.GET("/departments", s.handleV1Departments)
		territory.GET("/dc-share", s.handleV1DCShare)
		territory.GET("/people-per-charger", s.handleV1PeoplePerCharger)
		territory.GET("/choropleth", s.handleV1Choropleth)
	}

	// Distribution endpoints - power, current, access and timeline views
	distribution := v1.Group("/distribution")
	{
		distribution.GET("/power", s.handleV1PowerHistogram)
		distribution.GET("/categories", s.handleV1PowerCategories)
		distribution.GET("/describe", s.handleV1DescribePower)
		distribution.GET("/current-mix", s.handleV1CurrentMix)
		distribution.GET("/access-mix", s.handleV1AccessMix)
		distribution.GET("/installations", s.handleV1Installations)
		distribution.GET("/operators", s.handleV1Operators)
	}

	v1.GET("/quality/missing", s.handleV1Missing)
	v1.GET("/export/xlsx", s.handleV1ExportXLSX)
}
