package component

// AgentScript attaches a tengo behaviour script to an agent. Path is
// resolved through prefabs.LoadScript.
type AgentScript struct {
	Path string
	// Disabled is set after a script error so a broken script is not rerun
	// every frame; a reload clears it.
	Disabled bool
}

var AgentScriptComponent = NewComponent[AgentScript]("agent_script")
