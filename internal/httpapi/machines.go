package httpapi

import (
	"net/http"
	"time"

	"github.com/brannigan/finautomata/internal/automaton"
	"github.com/brannigan/finautomata/internal/httpapi/middle"
	"github.com/brannigan/finautomata/internal/httpapi/result"
	"github.com/brannigan/finautomata/internal/httpapi/serr"
	"github.com/brannigan/finautomata/internal/simulator"
	"github.com/brannigan/finautomata/internal/store"
)

// MachineResponse is the JSON view of a saved automaton.
type MachineResponse struct {
	ID       string                        `json:"id"`
	Name     string                        `json:"name"`
	Kind     automaton.Kind                `json:"kind"`
	Data     automaton.StructuredAutomaton `json:"data"`
	Created  time.Time                     `json:"created"`
	Modified time.Time                     `json:"modified"`
}

func machineResponse(m store.Machine) MachineResponse {
	return MachineResponse{
		ID:       m.ID.String(),
		Name:     m.Name,
		Kind:     m.Kind,
		Data:     m.Data,
		Created:  m.Created,
		Modified: m.Modified,
	}
}

// CreateMachineRequest is the body of POST /machines.
type CreateMachineRequest struct {
	Name string                        `json:"name"`
	Kind automaton.Kind                `json:"kind"`
	Data automaton.StructuredAutomaton `json:"data"`
}

func (api *API) epListMachines(req *http.Request) result.Result {
	user, _ := middle.User(req.Context())

	machines, err := api.Store.Machines().GetAllByOwner(req.Context(), user.ID)
	if err != nil {
		return errToResult(err, "")
	}

	resp := make([]MachineResponse, len(machines))
	for i, m := range machines {
		resp[i] = machineResponse(m)
	}
	return result.OK(resp)
}

func (api *API) epCreateMachine(req *http.Request) result.Result {
	user, _ := middle.User(req.Context())

	var body CreateMachineRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	if body.Name == "" {
		return result.BadRequest("name: property is empty or missing from request", "empty name")
	}

	if _, err := automaton.FromStructured(body.Data); err != nil {
		return result.BadRequest("data: "+err.Error(), err.Error())
	}

	now := time.Now()
	created, err := api.Store.Machines().Create(req.Context(), store.Machine{
		OwnerID:  user.ID,
		Name:     body.Name,
		Kind:     body.Kind,
		Data:     body.Data,
		Created:  now,
		Modified: now,
	})
	if err != nil {
		return errToResult(err, "")
	}

	return result.Created(machineResponse(created), "machine '%s' created", created.Name)
}

// loadOwnedMachine fetches the machine named by the request's id URL param,
// enforcing that it belongs to the authenticated caller the same way
// server/dao's session-scoped lookups do: a machine owned by someone else is
// reported as not-found rather than forbidden, so its existence isn't leaked.
func (api *API) loadOwnedMachine(req *http.Request) (store.Machine, result.Result, bool) {
	user, _ := middle.User(req.Context())

	id, err := urlParamID(req)
	if err != nil {
		return store.Machine{}, result.BadRequest(err.Error(), err.Error()), false
	}

	m, err := api.Store.Machines().GetByID(req.Context(), id)
	if err != nil {
		return store.Machine{}, errToResult(err, "no machine with that ID exists"), false
	}
	if m.OwnerID != user.ID {
		return store.Machine{}, result.NotFound("no machine with that ID exists"), false
	}
	return m, result.Result{}, true
}

func (api *API) epGetMachine(req *http.Request) result.Result {
	m, errResult, ok := api.loadOwnedMachine(req)
	if !ok {
		return errResult
	}
	return result.OK(machineResponse(m))
}

func (api *API) epUpdateMachine(req *http.Request) result.Result {
	m, errResult, ok := api.loadOwnedMachine(req)
	if !ok {
		return errResult
	}

	var body CreateMachineRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	if body.Name == "" {
		return result.BadRequest("name: property is empty or missing from request", "empty name")
	}
	if _, err := automaton.FromStructured(body.Data); err != nil {
		return result.BadRequest("data: "+err.Error(), err.Error())
	}

	m.Name = body.Name
	m.Kind = body.Kind
	m.Data = body.Data
	m.Modified = time.Now()

	updated, err := api.Store.Machines().Update(req.Context(), m.ID, m)
	if err != nil {
		return errToResult(err, "no machine with that ID exists")
	}
	return result.OK(machineResponse(updated), "machine '%s' updated", updated.Name)
}

func (api *API) epDeleteMachine(req *http.Request) result.Result {
	m, errResult, ok := api.loadOwnedMachine(req)
	if !ok {
		return errResult
	}
	if err := api.Store.Machines().Delete(req.Context(), m.ID); err != nil {
		return errToResult(err, "no machine with that ID exists")
	}
	return result.NoContent("machine '%s' deleted", m.Name)
}

// driverFor builds a one-shot simulator.Driver over m's structured form. The
// driver's mutations are never persisted back by these handlers: step/run act
// on an in-memory copy for the lifetime of the request, matching §4.6's
// request/response model rather than the long-lived session the CLI's REPL
// keeps.
func driverFor(m store.Machine) (*simulator.Driver, error) {
	mach, err := automaton.FromStructured(m.Data)
	if err != nil {
		return nil, serr.New("stored machine data is invalid", err)
	}
	return simulator.New(mach), nil
}

// StepResponse reports the result of advancing a simulation by one step.
type StepResponse struct {
	Step    *automaton.TraceStep `json:"step,omitempty"`
	Verdict automaton.Verdict    `json:"verdict"`
	Running bool                 `json:"running"`
}

// StepMachineRequest is the body of POST /machines/{id}/step. Every call
// starts a fresh simulation over Input and advances it by exactly one step;
// no simulation state is kept between calls.
type StepMachineRequest struct {
	Input string `json:"input"`
}

func (api *API) epStepMachine(req *http.Request) result.Result {
	m, errResult, ok := api.loadOwnedMachine(req)
	if !ok {
		return errResult
	}

	var body StepMachineRequest
	_ = parseJSON(req, &body)

	d, err := driverFor(m)
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	if !d.Machine().Running() && d.Machine().Verdict() == automaton.Undecided {
		if err := d.Init(body.Input); err != nil {
			return result.BadRequest(err.Error(), err.Error())
		}
	}

	if err := d.Step(); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	trace := d.Machine().Trace()
	var last *automaton.TraceStep
	if len(trace) > 0 {
		last = &trace[len(trace)-1]
	}
	return result.OK(StepResponse{
		Step:    last,
		Verdict: d.Machine().Verdict(),
		Running: d.Machine().Running(),
	})
}

// RunMachineRequest is the body of POST /machines/{id}/run.
type RunMachineRequest struct {
	Input string `json:"input"`
}

// RunResponse reports the full trace of a run-to-completion.
type RunResponse struct {
	Trace   []automaton.TraceStep `json:"trace"`
	Verdict automaton.Verdict     `json:"verdict"`
}

func (api *API) epRunMachine(req *http.Request) result.Result {
	m, errResult, ok := api.loadOwnedMachine(req)
	if !ok {
		return errResult
	}

	var body RunMachineRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	d, err := driverFor(m)
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	verdict, trace, err := d.TestString(body.Input)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	return result.OK(RunResponse{Trace: trace, Verdict: verdict})
}

// TestMachineRequest is the body of POST /machines/{id}/test.
type TestMachineRequest struct {
	Input string `json:"input"`
}

// TestResponse reports whether a single input was accepted, with its trace.
type TestResponse struct {
	Accepted bool                  `json:"accepted"`
	Trace    []automaton.TraceStep `json:"trace"`
}

func (api *API) epTestMachine(req *http.Request) result.Result {
	m, errResult, ok := api.loadOwnedMachine(req)
	if !ok {
		return errResult
	}

	var body TestMachineRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	d, err := driverFor(m)
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	verdict, trace, err := d.TestString(body.Input)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	return result.OK(TestResponse{Accepted: verdict == automaton.Accepted, Trace: trace})
}

// BatchTestMachineRequest is the body of POST /machines/{id}/batch-test.
type BatchTestMachineRequest struct {
	Inputs []string `json:"inputs"`
}

// BatchTestResult is one entry of a batch-test response.
type BatchTestResult struct {
	Input    string `json:"input"`
	Accepted bool   `json:"accepted"`
	Error    string `json:"error,omitempty"`
}

func (api *API) epBatchTestMachine(req *http.Request) result.Result {
	m, errResult, ok := api.loadOwnedMachine(req)
	if !ok {
		return errResult
	}

	var body BatchTestMachineRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	if len(body.Inputs) == 0 {
		return result.BadRequest("inputs: property is empty or missing from request", "empty inputs")
	}

	d, err := driverFor(m)
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	batch := d.RunBatchTests(body.Inputs)
	resp := make([]BatchTestResult, len(batch))
	for i, r := range batch {
		entry := BatchTestResult{Input: r.Input, Accepted: r.Accepted}
		if r.Err != nil {
			entry.Error = r.Err.Error()
		}
		resp[i] = entry
	}
	return result.OK(resp)
}
