package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	// Live invalidation channel; distinct from the REST surface.
	s.echo.GET("/ws", s.liveUpdates)

	api := s.echo.Group("/api")
	products := api.Group("/products")
	products.GET("", s.listProducts)
	products.POST("", s.createProduct)
	products.POST("/refresh", s.refreshProducts)
	products.GET("/:id", s.getProduct)
	products.PUT("/:id", s.updateProduct)
	products.DELETE("/:id", s.deleteProduct)
}
