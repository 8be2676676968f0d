// Package brain turns declarative brain descriptions into neural networks
// and the wiring that attaches them to a body.
//
// Descriptions come as YAML or as a <brain> element tree:
//
//	<brain name="reflex" body="pendulum">
//	  <neuron id="theta" layer="input"/>
//	  <neuron id="motor" layer="output" type="sigmoid" bias="0" gain="2"/>
//	  <connection src="theta" dst="motor" weight="-1.5"/>
//	  <sensor input="theta" state="0"/>
//	  <actuator output="motor" control="0" scale="4" offset="-2"/>
//	</brain>
//
// Missing or malformed attributes are reported as *neural.ConfigurationError;
// topology problems found while building (duplicate ids, unknown endpoints)
// surface as *neural.TopologyError.
package brain
