package metrics

import "strings"

const metricPrefix = "docsplit_"

// MetricName ensures the metric carries the docsplit prefix.
func MetricName(name string) string {
	if strings.HasPrefix(name, metricPrefix) {
		return name
	}
	return metricPrefix + name
}

// MetricNameWithSubsystem builds docsplit_<subsystem>_<name>.
func MetricNameWithSubsystem(subsystem, name string) string {
	if strings.HasPrefix(name, metricPrefix) {
		return name
	}
	subsystem = strings.Trim(subsystem, "_")
	switch {
	case subsystem == "":
		return MetricName(name)
	case name == "":
		return metricPrefix + subsystem
	default:
		return metricPrefix + subsystem + "_" + name
	}
}
