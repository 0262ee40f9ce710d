// Package services implements the core business logic behind the driving
// ports: change tracking, content staging, sync orchestration, pipeline
// resource management, indexer monitoring and corpus analysis.
//
// Services depend only on the domain package and the driven ports; all
// infrastructure reaches them through interfaces.
package services
