package mocks

//go:generate mockgen -destination=./mock_random_source.go -package=mocks github.com/rxtech-lab/argo-rl/internal/agent RandomSource
//go:generate mockgen -destination=./mock_predictor.go -package=mocks github.com/rxtech-lab/argo-rl/internal/predictor Predictor
//go:generate mockgen -destination=./mock_datasource.go -package=mocks github.com/rxtech-lab/argo-rl/internal/feed DataSource
