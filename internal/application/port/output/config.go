package output

type SecretsPort interface {
	Get(key string) string
	// Require returns an error naming key when it is unset.
	Require(key string) (string, error)
	GetWithDefault(key string, defaultValue string) string
}
