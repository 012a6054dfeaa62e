package main

// @title E-Souk Onboarding Service API
// @version 1.0
// @description Guides a vendor through creating a shop and adding its first products, with full observability (logging, tracing, metrics)

// @contact.name E-Souk Support
// @contact.email support@esouk.example

// @host localhost:8084
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the vendor JWT.

// @tag.name Onboarding
// @tag.description Onboarding wizard endpoints

// @tag.name Health
// @tag.description Health check endpoints
