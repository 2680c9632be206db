package hue

import (
	"fmt"
	"sync"
	"time"

	"github.com/amimof/huego"
	log "github.com/echocat/slf4g"

	"github.com/blaubaer/talk-assistant/pkg/common"
	"github.com/blaubaer/talk-assistant/pkg/signal"
)

const appName = "github.com/blaubaer/talk-assistant"

type bridge interface {
	GetLights() ([]huego.Light, error)
	GetGroups() ([]huego.Group, error)
	SetLightState(id int, state huego.State) (*huego.Response, error)
	SetGroupState(id int, state huego.State) (*huego.Response, error)
}

type Hue struct {
	conf         *Configuration
	saveConfFunc func() error

	bridge bridge
	lights []huego.Light
	groups []huego.Group

	// previous holds the states of lights/groups before they were switched
	// on, by target key.
	previous map[string]huego.State
	mutex    sync.Mutex

	pairInterval time.Duration
}

func (this *Hue) Initialize(conf *Configuration, saveConfFunc func() error) error {
	this.conf = conf
	this.saveConfFunc = saveConfFunc
	this.previous = map[string]huego.State{}

	b, err := this.resolveBridge()
	if err != nil {
		return err
	}
	this.bridge = b

	return this.Update()
}

func (this *Hue) Update() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.bridge == nil {
		return fmt.Errorf("not paired with hue bridge")
	}

	lights, err := this.discoverLights()
	if err != nil {
		return err
	}
	groups, err := this.discoverGroups()
	if err != nil {
		return err
	}

	this.lights = lights
	this.groups = groups

	log.With("lights", len(lights)).
		With("groups", len(groups)).
		Debug("Hue targets discovered.")

	return nil
}

func (this *Hue) discoverLights() (result []huego.Light, _ error) {
	if this.conf.Kinds.Has(KindLight) {
		candidates, err := this.bridge.GetLights()
		if err != nil {
			return nil, fmt.Errorf("cannot discover lights: %w", err)
		}
		for _, candidate := range candidates {
			if this.conf.Name.MatchString(candidate.Name) {
				if candidate.State == nil {
					candidate.State = &huego.State{}
				}
				result = append(result, candidate)
			}
		}
	}
	return
}

func (this *Hue) discoverGroups() (result []huego.Group, _ error) {
	if this.conf.Kinds.Has(KindGroup) {
		candidates, err := this.bridge.GetGroups()
		if err != nil {
			return nil, fmt.Errorf("cannot discover groups: %w", err)
		}
		for _, candidate := range candidates {
			if this.conf.Name.MatchString(candidate.Name) {
				if candidate.State == nil {
					candidate.State = &huego.State{}
				}
				result = append(result, candidate)
			}
		}
	}
	return
}

func (this *Hue) Ensure(ctx signal.Context) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.bridge == nil {
		return fmt.Errorf("not paired with hue bridge")
	}

	state := ctx.State()
	for i := range this.lights {
		v := &this.lights[i]
		if err := this.ensure(state, fmt.Sprintf("light:%d", v.ID), v.State, func(target huego.State) error {
			_, err := this.bridge.SetLightState(v.ID, target)
			return err
		}); err != nil {
			return fmt.Errorf("cannot switch light %q#%d to %v: %w", v.Name, v.ID, state, err)
		}
	}
	for i := range this.groups {
		v := &this.groups[i]
		if err := this.ensure(state, fmt.Sprintf("group:%d", v.ID), v.State, func(target huego.State) error {
			_, err := this.bridge.SetGroupState(v.ID, target)
			return err
		}); err != nil {
			return fmt.Errorf("cannot switch group %q#%d to %v: %w", v.Name, v.ID, state, err)
		}
	}
	return nil
}

func (this *Hue) ensure(state signal.State, key string, current *huego.State, apply func(huego.State) error) error {
	target, ok, err := this.targetState(state, key, current)
	if err != nil {
		return err
	}
	if !ok {
		if state == signal.StateOff {
			delete(this.previous, key)
		}
		return nil
	}
	if err := apply(target); err != nil {
		return err
	}
	if state == signal.StateOn {
		if _, exists := this.previous[key]; !exists {
			this.previous[key] = *current
		}
	} else {
		delete(this.previous, key)
	}
	*current = target
	return nil
}

func (this *Hue) targetState(state signal.State, key string, current *huego.State) (huego.State, bool, error) {
	switch state {
	case signal.StateOn:
		if !current.On || current.Bri != this.conf.Brightness || current.Hue != this.conf.Hue || current.Sat != this.conf.Saturation {
			return huego.State{
				On:  true,
				Bri: this.conf.Brightness,
				Hue: this.conf.Hue,
				Sat: this.conf.Saturation,
			}, true, nil
		}
	case signal.StateOff:
		if previous, ok := this.previous[key]; ok && this.conf.Restore {
			if previous.On {
				return huego.State{
					On:  true,
					Bri: previous.Bri,
					Hue: previous.Hue,
					Sat: previous.Sat,
				}, true, nil
			}
			return huego.State{On: false}, current.On, nil
		}
		if current.On {
			return huego.State{On: false}, true, nil
		}
	default:
		return huego.State{}, false, fmt.Errorf("illegal signal state: %v", state)
	}
	return huego.State{}, false, nil
}

func (this *Hue) resolveBridge() (bridge, error) {
	if !this.conf.Pair && this.conf.IsPaired() {
		return huego.New(this.conf.Bridge, this.conf.User), nil
	}

	if u := this.conf.User; u != "" && !this.conf.Pair {
		b, err := this.discoverBridge()
		if err != nil {
			return nil, err
		}
		return huego.New(b.Host, u), nil
	}

	return this.pair()
}

func (this *Hue) discoverBridge() (*huego.Bridge, error) {
	if this.conf.Bridge != "" {
		return &huego.Bridge{
			Host: this.conf.Bridge,
		}, nil
	}

	result, err := huego.Discover()
	if err != nil {
		return nil, fmt.Errorf("cannot discover hue bridge: %w", err)
	}
	return result, nil
}

const errLinkButtonNotPressed = 101

func (this *Hue) pair() (bridge, error) {
	b, err := this.discoverBridge()
	if err != nil {
		return nil, err
	}

	user, err := this.awaitLinkButton(b.Host, b.CreateUser)
	if err != nil {
		return nil, err
	}

	this.conf.Bridge = b.Host
	this.conf.User = user
	this.conf.Pair = false
	if err := this.saveConfFunc(); err != nil {
		log.WithError(err).
			Warn("Cannot store pairing. The app will work now, but next time the pairing might be required again.")
	}

	log.With("bridge", b.Host).
		Info("Successful paired.")
	return huego.New(b.Host, user), nil
}

// awaitLinkButton retries createUser until the link button of the bridge was
// pressed or the pair timeout is exceeded.
func (this *Hue) awaitLinkButton(host string, createUser func(deviceType string) (string, error)) (string, error) {
	timeout := this.conf.PairTimeout
	if timeout <= 0 {
		timeout = DefaultPairTimeout
	}
	deadline := time.Now().Add(timeout)
	interval := this.pairInterval
	if interval <= 0 {
		interval = time.Second
	}

	log.With("bridge", host).
		With("timeout", timeout).
		Info("Wait for hue link button been pressed...")
	for {
		user, err := createUser(appName)
		if apiErr, ok := common.AsError[*huego.APIError](err); ok && apiErr.Type == errLinkButtonNotPressed {
			if !time.Now().Add(interval).Before(deadline) {
				return "", fmt.Errorf("link button of %s was not pressed within %v", host, timeout)
			}
			time.Sleep(interval)
			continue
		} else if err != nil {
			return "", fmt.Errorf("was not able to pair with %s: %w", host, err)
		}
		return user, nil
	}
}

func (this *Hue) Dispose() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.conf = nil
	this.saveConfFunc = nil
	this.bridge = nil
	return nil
}

func (this *Hue) GetType() signal.Type {
	return signal.TypeHue
}
