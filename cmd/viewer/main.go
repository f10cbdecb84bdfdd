package main

import (
	"context"
	"flag"
	"log"
	"runtime"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"mini-terrain/internal/camera"
	"mini-terrain/internal/config"
	"mini-terrain/internal/graphics"
	"mini-terrain/internal/input"
	"mini-terrain/internal/physics"
	"mini-terrain/internal/profiling"
	"mini-terrain/internal/streaming"
	"mini-terrain/internal/world"
)

const (
	winW = 1280
	winH = 720

	eyeHeight = 1.62
	bodyWidth = 0.3

	pausedFPS = 30
)

func init() {
	runtime.LockOSThread()
}

func main() {
	var (
		configPath = flag.String("config", "", "terrain config file (YAML); empty uses built-in defaults")
		fetchSrc   = flag.String("fetch", "", "go-getter source to download the config from")
		startY     = flag.Float64("y", 64, "height to search down from for the spawn point")
		fpsLimit   = flag.Int("fps", 0, "frame cap; 0 follows vsync only")
	)
	flag.Parse()

	cfg, err := config.Resolve(context.Background(), *configPath, *fetchSrc)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := glfw.Init(); err != nil {
		log.Fatal(err)
	}
	defer glfw.Terminate()

	window, err := setupWindow()
	if err != nil {
		log.Fatal(err)
	}
	if err := gl.Init(); err != nil {
		log.Fatal(err)
	}

	chunks, err := graphics.NewChunkRenderer()
	if err != nil {
		log.Fatal(err)
	}
	defer chunks.Delete()

	mgr, err := cfg.NewManager(chunks, log.Default())
	if err != nil {
		log.Fatal(err)
	}
	defer mgr.Close()
	config.SetRenderDistance(cfg.ViewRadius)

	sampler, err := cfg.Sampler()
	if err != nil {
		log.Fatal(err)
	}
	spawnY := float32(*startY)
	if ground, ok := physics.FindGroundLevel(0, 0, spawnY, -spawnY, sampler, cfg.Threshold); ok {
		spawnY = ground + eyeHeight
		log.Printf("spawn: ground at y=%.2f", ground)
	}

	cam := camera.New(winW, winH, mgl32.Vec3{0, spawnY, 0})
	im := input.NewInputManager()
	im.SetKeyCallback(window)

	paused := false
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if !paused {
			cam.HandleMouseMovement(xpos, ypos)
		}
	})
	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		gl.Viewport(0, 0, int32(width), int32(height))
		cam.Resize(width, height)
	})

	gl.Enable(gl.DEPTH_TEST)
	gl.ClearColor(0.55, 0.72, 0.90, 1.0)

	runLoop(window, im, cam, mgr, chunks, sampler, cfg.Threshold, *fpsLimit, &paused)
}

func setupWindow() (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(winW, winH, "mini-terrain", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	glfw.SwapInterval(1)
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)

	return window, nil
}

func runLoop(window *glfw.Window, im *input.InputManager, cam *camera.Camera, mgr *streaming.Manager,
	chunks *graphics.ChunkRenderer, field physics.Field, threshold float32, fpsLimit int, paused *bool) {
	limiter := newFrameLimiter()
	follow := true
	noclip := false
	frames := 0
	lastTime := time.Now()
	fpsTicker := time.NewTicker(time.Second)
	defer fpsTicker.Stop()

	for !window.ShouldClose() {
		profiling.ResetTick()
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if im.JustPressed(input.ActionPause) {
			*paused = !*paused
			if *paused {
				window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
			} else {
				window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
				cam.FirstMouse = true
			}
		}
		if im.JustPressed(input.ActionToggleWireframe) {
			chunks.Wireframe = !chunks.Wireframe
		}
		if im.JustPressed(input.ActionToggleNoclip) {
			noclip = !noclip
			log.Printf("noclip: %v", noclip)
		}
		if im.JustPressed(input.ActionToggleFollow) {
			follow = !follow
			log.Printf("streaming follow: %v", follow)
		}
		if im.JustPressed(input.ActionRenderFarther) {
			config.SetRenderDistance(config.GetRenderDistance() + 1)
		}
		if im.JustPressed(input.ActionRenderNearer) {
			config.SetRenderDistance(config.GetRenderDistance() - 1)
		}

		if !*paused {
			speed := float64(1)
			if im.IsActive(input.ActionSprint) {
				speed = 4
			}
			prev := cam.Position
			cam.Move(
				im.Axis(input.ActionMoveForward, input.ActionMoveBackward),
				im.Axis(input.ActionMoveRight, input.ActionMoveLeft),
				im.Axis(input.ActionMoveUp, input.ActionMoveDown),
				dt*speed,
			)
			feet := cam.Position.Sub(mgl32.Vec3{0, eyeHeight, 0})
			if !noclip && physics.Collides(feet, eyeHeight, bodyWidth, field, threshold) {
				cam.Position = prev
			}
			if follow {
				if _, err := mgr.Tick(cam.Position); err != nil {
					log.Printf("tick: %v", err)
				}
			}
		}

		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
		base := world.ChunkCoordAt(cam.Position, mgr.ChunkSize())
		chunks.Draw(cam.ViewMatrix(), cam.ProjectionMatrix(), base, config.GetRenderDistance())

		im.PostUpdate()
		func() { defer profiling.Track("glfw.SwapBuffers")(); window.SwapBuffers() }()
		func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()
		frames++
		if *paused {
			limiter.Wait(pausedFPS)
		} else {
			limiter.Wait(fpsLimit)
		}

		select {
		case <-fpsTicker.C:
			log.Printf("FPS: %d chunks: %d active / %d uploaded | %s",
				frames, mgr.Len(), chunks.Len(), profiling.TopN(3))
			frames = 0
		default:
		}
	}
}
