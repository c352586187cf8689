// Package config defines the typed configuration of the cart detector.
//
// A Config describes what to look for (ColorTargets), where not to look
// (ExclusionZones), which candidate boxes count as carts (ValidationRule) and
// how often to save snapshots (CaptureConfig). Configurations are built from
// Default, optionally overlaid with a JSON file and CARTWATCH_* environment
// variables, and validated exactly once by Load.
//
// # Color Ranges
//
// HSV bounds use the 8-bit convention common to camera pipelines:
//   - H: 0-179 (degrees / 2)
//   - S: 0-255
//   - V: 0-255
//
// Both bounds are inclusive and compared per channel.
//
// # JSON Format
//
//	{
//	  "targets": [
//	    {"name": "carro_azul", "lower": [100,150,50], "upper": [140,255,255],
//	     "color": "#0000FF", "highlight": "#00FFFF"}
//	  ],
//	  "zones": [{"x1": 0, "y1": 0, "x2": 300, "y2": 250, "color": "#FF0000"}],
//	  "rule": {"min_area": 1200, "min_aspect": 1.3, "max_aspect": 2.8},
//	  "capture": {"policy": "cooldown", "cooldown_seconds": 3}
//	}
//
// Fields omitted from the file keep their default values. Providing "targets"
// or "zones" replaces the default list entirely.
package config
