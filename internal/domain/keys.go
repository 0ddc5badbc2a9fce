package domain

import "fmt"

// Cache key naming is an interop contract shared with the gateway and
// must not change.
const KeyHealthyServices = "healthy_services"

func ServiceInfoKey(name string) string {
	return "service_info:" + name
}

// ServiceInfoPattern matches the info key plus any derived keys for the
// same service, used for invalidation on health transitions.
func ServiceInfoPattern(name string) string {
	return "service_info:" + name + "*"
}

func InstancesKey(name string) string {
	return fmt.Sprintf("service:%s:instances", name)
}

func ActiveKey(name string) string {
	return fmt.Sprintf("service:%s:active", name)
}

func FlagKey(name, environment string) string {
	return fmt.Sprintf("feature_flag:%s:%s", name, environment)
}
