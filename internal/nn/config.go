package nn

// Config fragments shared by the layer serializers. These reproduce the
// authoring schema the browser-side converter expects as input: dtype
// policies as objects, initializers as registered-module references.

func dtypePolicy() map[string]any {
	return map[string]any{
		"module":          "keras",
		"class_name":      "DTypePolicy",
		"config":          map[string]any{"name": "float32"},
		"registered_name": nil,
	}
}

func initializerRef(class string) map[string]any {
	return map[string]any{
		"module":          "keras.initializers",
		"class_name":      class,
		"config":          map[string]any{"seed": nil},
		"registered_name": nil,
	}
}
