package splintr

// The canonical marker table. A marker's offset within the extended
// range is its index here, identical across variants, so the table
// order is part of the wire contract: append only, never reorder.
var markerTable = [...]Marker{
	// conversation structure
	{Name: "system", Literal: "<|system|>", Category: CategoryConversation},
	{Name: "user", Literal: "<|user|>", Category: CategoryConversation},
	{Name: "assistant", Literal: "<|assistant|>", Category: CategoryConversation},
	{Name: "im_start", Literal: "<|im_start|>", Category: CategoryConversation},
	{Name: "im_end", Literal: "<|im_end|>", Category: CategoryConversation},

	// reasoning
	{Name: "think", Literal: "<|think|>", Category: CategoryReasoning},
	{Name: "think_end", Literal: "<|/think|>", Category: CategoryReasoning},

	// agent loop
	{Name: "plan", Literal: "<|plan|>", Category: CategoryAgentLoop},
	{Name: "plan_end", Literal: "<|/plan|>", Category: CategoryAgentLoop},
	{Name: "step", Literal: "<|step|>", Category: CategoryAgentLoop},
	{Name: "step_end", Literal: "<|/step|>", Category: CategoryAgentLoop},
	{Name: "act", Literal: "<|act|>", Category: CategoryAgentLoop},
	{Name: "act_end", Literal: "<|/act|>", Category: CategoryAgentLoop},
	{Name: "observe", Literal: "<|observe|>", Category: CategoryAgentLoop},
	{Name: "observe_end", Literal: "<|/observe|>", Category: CategoryAgentLoop},

	// tool calling
	{Name: "function", Literal: "<|function|>", Category: CategoryToolCalling},
	{Name: "function_end", Literal: "<|/function|>", Category: CategoryToolCalling},
	{Name: "result", Literal: "<|result|>", Category: CategoryToolCalling},
	{Name: "result_end", Literal: "<|/result|>", Category: CategoryToolCalling},
	{Name: "error", Literal: "<|error|>", Category: CategoryToolCalling},
	{Name: "error_end", Literal: "<|/error|>", Category: CategoryToolCalling},

	// code execution
	{Name: "code", Literal: "<|code|>", Category: CategoryCodeExecution},
	{Name: "code_end", Literal: "<|/code|>", Category: CategoryCodeExecution},
	{Name: "output", Literal: "<|output|>", Category: CategoryCodeExecution},
	{Name: "output_end", Literal: "<|/output|>", Category: CategoryCodeExecution},
	{Name: "lang", Literal: "<|lang|>", Category: CategoryCodeExecution},
	{Name: "lang_end", Literal: "<|/lang|>", Category: CategoryCodeExecution},

	// retrieval / citation
	{Name: "context", Literal: "<|context|>", Category: CategoryRetrieval},
	{Name: "context_end", Literal: "<|/context|>", Category: CategoryRetrieval},
	{Name: "quote", Literal: "<|quote|>", Category: CategoryRetrieval},
	{Name: "quote_end", Literal: "<|/quote|>", Category: CategoryRetrieval},
	{Name: "cite", Literal: "<|cite|>", Category: CategoryRetrieval},
	{Name: "cite_end", Literal: "<|/cite|>", Category: CategoryRetrieval},
	{Name: "source", Literal: "<|source|>", Category: CategoryRetrieval},
	{Name: "source_end", Literal: "<|/source|>", Category: CategoryRetrieval},

	// memory
	{Name: "memory", Literal: "<|memory|>", Category: CategoryMemory},
	{Name: "memory_end", Literal: "<|/memory|>", Category: CategoryMemory},
	{Name: "recall", Literal: "<|recall|>", Category: CategoryMemory},
	{Name: "recall_end", Literal: "<|/recall|>", Category: CategoryMemory},

	// control
	{Name: "pad", Literal: "<|pad|>", Category: CategoryControl},
	{Name: "stop", Literal: "<|stop|>", Category: CategoryControl},
	{Name: "sep", Literal: "<|sep|>", Category: CategoryControl},

	// multimodal
	{Name: "image", Literal: "<|image|>", Category: CategoryMultimodal},
	{Name: "image_end", Literal: "<|/image|>", Category: CategoryMultimodal},
	{Name: "audio", Literal: "<|audio|>", Category: CategoryMultimodal},
	{Name: "audio_end", Literal: "<|/audio|>", Category: CategoryMultimodal},
	{Name: "video", Literal: "<|video|>", Category: CategoryMultimodal},
	{Name: "video_end", Literal: "<|/video|>", Category: CategoryMultimodal},

	// document structure
	{Name: "title", Literal: "<|title|>", Category: CategoryDocument},
	{Name: "title_end", Literal: "<|/title|>", Category: CategoryDocument},
	{Name: "section", Literal: "<|section|>", Category: CategoryDocument},
	{Name: "section_end", Literal: "<|/section|>", Category: CategoryDocument},
	{Name: "summary", Literal: "<|summary|>", Category: CategoryDocument},
	{Name: "summary_end", Literal: "<|/summary|>", Category: CategoryDocument},
}

// NumMarkers is the number of extended-marker slots, identical for
// every variant.
const NumMarkers = uint32(len(markerTable))

var markerOffsets = func() map[string]uint32 {
	m := make(map[string]uint32, len(markerTable))
	for i, mk := range markerTable {
		m[mk.Name] = uint32(i)
	}
	return m
}()

// MarkerOffset returns the canonical offset of the named marker within
// the extended range. Offsets are variant-independent.
func MarkerOffset(name string) (uint32, bool) {
	off, ok := markerOffsets[name]
	return off, ok
}

// Markers returns a copy of the canonical marker table in offset order.
func Markers() []Marker {
	out := make([]Marker, len(markerTable))
	copy(out, markerTable[:])
	return out
}
