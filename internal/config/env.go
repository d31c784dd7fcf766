package config

import (
	"github.com/JaimeStill/counsel/internal/extraction"
	"github.com/JaimeStill/counsel/internal/generation"
	"github.com/JaimeStill/counsel/pkg/storage"
	"github.com/JaimeStill/counsel/pkg/tracing"
	"github.com/JaimeStill/counsel/workflow"
)

var generationEnv = &generation.Env{
	Provider:       "COUNSEL_GENERATION_PROVIDER",
	CallTimeout:    "COUNSEL_GENERATION_CALL_TIMEOUT",
	VertexProject:  "COUNSEL_VERTEX_PROJECT",
	VertexLocation: "COUNSEL_VERTEX_LOCATION",
	VertexModel:    "COUNSEL_VERTEX_MODEL",
}

var pipelineEnv = &workflow.Env{
	MaxToolIterations: "COUNSEL_PIPELINE_MAX_TOOL_ITERATIONS",
	ToolLoopTimeout:   "COUNSEL_PIPELINE_TOOL_LOOP_TIMEOUT",
	ToolTimeout:       "COUNSEL_PIPELINE_TOOL_TIMEOUT",
	RunTimeout:        "COUNSEL_PIPELINE_RUN_TIMEOUT",
	MaxSteps:          "COUNSEL_PIPELINE_MAX_STEPS",
	MaxExtractChars:   "COUNSEL_PIPELINE_MAX_EXTRACT_CHARS",
}

var extractionEnv = &extraction.Env{
	OCRDPI:       "COUNSEL_OCR_DPI",
	OCRLanguages: "COUNSEL_OCR_LANGUAGES",
	OCRWorkers:   "COUNSEL_OCR_WORKERS",
}

var storageEnv = &storage.Env{
	Provider:         "COUNSEL_STORAGE_PROVIDER",
	Container:        "COUNSEL_STORAGE_CONTAINER",
	ConnectionString: "COUNSEL_STORAGE_CONNECTION_STRING",
	Endpoint:         "COUNSEL_STORAGE_ENDPOINT",
	AccessKey:        "COUNSEL_STORAGE_ACCESS_KEY",
	SecretKey:        "COUNSEL_STORAGE_SECRET_KEY",
	UseSSL:           "COUNSEL_STORAGE_USE_SSL",
}

var tracingEnv = &tracing.Env{
	Exporter:    "COUNSEL_TRACING_EXPORTER",
	Endpoint:    "COUNSEL_TRACING_ENDPOINT",
	Insecure:    "COUNSEL_TRACING_INSECURE",
	ServiceName: "COUNSEL_TRACING_SERVICE_NAME",
	SampleRatio: "COUNSEL_TRACING_SAMPLE_RATIO",
}
