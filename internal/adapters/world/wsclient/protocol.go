package wsclient

import "encoding/json"

// Bridge methods
const (
	MethodHello          = "hello"
	MethodGetBlock       = "get_block"
	MethodNearbyEntities = "nearby_entities"
	MethodBreakBlock     = "break_block"
	MethodEquip          = "equip"
	MethodInventory      = "inventory"
	MethodSetControl     = "set_control"
	MethodLook           = "look"
	MethodPosition       = "position"
	MethodVelocity       = "velocity"
)

// Request is one call sent to the bridge
type Request struct {
	ID     string      `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

// Response answers the request with the same ID
type Response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type helloParams struct {
	Agent string `json:"agent"`
}

type cellParams struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

type blockResult struct {
	Found    bool   `json:"found"`
	Material string `json:"material"`
}

type entityWire struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Kind     string     `json:"kind"`
	Position [3]float64 `json:"position"`
}

type entitiesResult struct {
	Entities []entityWire `json:"entities"`
}

type equipParams struct {
	Item string `json:"item"`
}

type inventoryResult struct {
	Items []string `json:"items"`
}

type controlParams struct {
	Control string `json:"control"`
	Active  bool   `json:"active"`
}

type lookParams struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

type vectorResult struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}
