package hek

import "strings"

// TagClass is a four-character-code tag class identifier, stored on disk
// as a big-endian-looking ASCII literal (e.g. "scnr" for scenario) but
// represented here as the plain uint32 the rest of the toolchain compares
// against.
type TagClass uint32

// fourCC builds a TagClass from its four ASCII characters, matching the
// literal order used throughout the on-disk format and found_tag_dependency's
// class_int enumeration.
func fourCC(a, b, c, d byte) TagClass {
	return TagClass(uint32(a)<<24 | uint32(b)<<16 | uint32(c)<<8 | uint32(d))
}

// String renders the class as its four-character code.
func (c TagClass) String() string {
	return string([]byte{byte(c >> 24), byte(c >> 16), byte(c >> 8), byte(c)})
}

var (
	ClassActorVariant       = fourCC('a', 'v', 't', 'r')
	ClassActor              = fourCC('a', 'c', 't', 'r')
	ClassAntenna            = fourCC('a', 'n', 't', '!')
	ClassModelAnimations    = fourCC('a', 'n', 't', 'r')
	ClassBiped              = fourCC('b', 'i', 'p', 'd')
	ClassBitmap             = fourCC('b', 'i', 't', 'm')
	ClassSpheroid           = fourCC('b', 'o', 'o', 'm')
	ClassContrailSystem     = fourCC('c', 'o', 'n', 't')
	ClassColorTable         = fourCC('c', 'o', 'l', 'o')
	ClassDamageEffect       = fourCC('j', 'p', 't', '!')
	ClassDecal              = fourCC('d', 'e', 'c', 'a')
	ClassDetailObjectCollection = fourCC('d', 'o', 'b', 'c')
	ClassDeviceControl      = fourCC('c', 't', 'r', 'l')
	ClassDeviceLightFixture = fourCC('l', 'i', 'f', 'i')
	ClassDeviceMachine      = fourCC('m', 'a', 'c', 'h')
	ClassDevice             = fourCC('d', 'e', 'v', 'i')
	ClassDialogue           = fourCC('u', 'd', 'l', 'g')
	ClassEffect             = fourCC('e', 'f', 'f', 'e')
	ClassEquipment          = fourCC('e', 'q', 'i', 'p')
	ClassFlag               = fourCC('f', 'l', 'a', 'g')
	ClassFog                = fourCC('f', 'o', 'g', ' ')
	ClassFont               = fourCC('f', 'o', 'n', 't')
	ClassGarbageCollection  = fourCC('g', 'r', 'b', 'g')
	ClassGBXModel           = fourCC('m', 'o', 'd', '2')
	ClassModel              = fourCC('m', 'o', 'd', 'e')
	ClassGlow               = fourCC('g', 'l', 'w', '!')
	ClassGrenadeHUDInterface = fourCC('g', 'r', 'h', 'i')
	ClassHUDGlobals         = fourCC('h', 'u', 'd', 'g')
	ClassItem               = fourCC('i', 't', 'e', 'm')
	ClassItemCollection     = fourCC('i', 't', 'c', 'l')
	ClassLens               = fourCC('l', 'e', 'n', 's')
	ClassLight              = fourCC('l', 'i', 'g', 'h')
	ClassLightVolume        = fourCC('m', 'g', 's', '2')
	ClassLightning          = fourCC('e', 'l', 'e', 'c')
	ClassMaterialEffects    = fourCC('f', 'o', 'o', 't')
	ClassMeter              = fourCC('m', 'e', 't', 'r')
	ClassObject             = fourCC('o', 'b', 'j', 'e')
	ClassParticleSystem     = fourCC('p', 'c', 't', 'l')
	ClassParticle           = fourCC('p', 'a', 'r', 't')
	ClassPhysics            = fourCC('p', 'h', 'y', 's')
	ClassPlaceholder        = fourCC('p', 'l', 'a', 'c')
	ClassPointPhysics       = fourCC('p', 'p', 'h', 'y')
	ClassProjectile         = fourCC('p', 'r', 'o', 'j')
	ClassScenarioStructureBSP = fourCC('s', 'b', 's', 'p')
	ClassScenario           = fourCC('s', 'c', 'n', 'r')
	ClassShaderTransparentChicago = fourCC('s', 'c', 'h', 'i')
	ClassShaderTransparentChicagoExtended = fourCC('s', 'c', 'e', 'x')
	ClassShaderEnvironment  = fourCC('s', 'e', 'n', 'v')
	ClassShaderTransparentGlass = fourCC('s', 'g', 'l', 'a')
	ClassShader             = fourCC('s', 'h', 'd', 'r')
	ClassSky                = fourCC('s', 'k', 'y', ' ')
	ClassShaderTransparentMeter = fourCC('s', 'm', 'e', 't')
	ClassSound              = fourCC('s', 'n', 'd', '!')
	ClassSoundEnvironment   = fourCC('s', 'n', 'd', 'e')
	ClassShaderModel        = fourCC('s', 'o', 's', 'o')
	ClassShaderTransparentGeneric = fourCC('s', 'o', 't', 'r')
	ClassUIWidgetCollection = fourCC('S', 'c', 'n', 'C')
	ClassShaderTransparentPlasma = fourCC('s', 'p', 'l', 'a')
	ClassSoundScenery       = fourCC('s', 's', 'c', 'e')
	ClassStringList         = fourCC('s', 't', 'r', '#')
	ClassShaderTransparentWater = fourCC('s', 'w', 'a', 't')
	ClassTagCollection      = fourCC('t', 'a', 'g', 'c')
	ClassCameraTrack        = fourCC('t', 'r', 'a', 'k')
	ClassDialogueUnicode    = fourCC('u', 'n', 'i', 'c')
	ClassUnitHUDInterface   = fourCC('u', 'h', 'u', 'd')
	ClassUnit               = fourCC('u', 'n', 'i', 't')
	ClassUnicodeStringList  = fourCC('u', 's', 't', 'r')
	ClassVirtualKeyboard    = fourCC('v', 'c', 'k', 'y')
	ClassVehicle            = fourCC('v', 'e', 'h', 'i')
	ClassWeaponHUDInterface = fourCC('w', 'p', 'h', 'i')
	ClassWeapon             = fourCC('w', 'e', 'a', 'p')
	ClassWind               = fourCC('w', 'i', 'n', 'd')
	ClassWeatherParticleSystem = fourCC('r', 'a', 'i', 'n')
)

// classParents holds the up-to-three-level parent chain for every class
// that is addressable by one of its ancestors in a tag reference field
// (e.g. a reference declared as "object" may resolve to a biped, vehicle,
// weapon, equipment, garbage, projectile, scenery, device, placeholder, or
// sound scenery tag).
var classParents = map[TagClass][]TagClass{
	ClassBiped:       {ClassUnit, ClassObject},
	ClassVehicle:     {ClassUnit, ClassObject},
	ClassUnit:        {ClassObject},
	ClassWeapon:      {ClassItem, ClassObject},
	ClassEquipment:   {ClassItem, ClassObject},
	ClassGarbageCollection: {ClassObject},
	ClassProjectile:  {ClassObject},
	ClassPlaceholder: {ClassObject},
	ClassSoundScenery: {ClassObject},
	ClassDeviceControl:      {ClassDevice, ClassObject},
	ClassDeviceLightFixture: {ClassDevice, ClassObject},
	ClassDeviceMachine:      {ClassDevice, ClassObject},
	ClassDevice:             {ClassObject},
	ClassItem:   {ClassObject},
	ClassShaderEnvironment:                {ClassShader},
	ClassShaderModel:                      {ClassShader},
	ClassShaderTransparentGeneric:         {ClassShader},
	ClassShaderTransparentChicago:         {ClassShader},
	ClassShaderTransparentChicagoExtended: {ClassShader},
	ClassShaderTransparentWater:           {ClassShader},
	ClassShaderTransparentGlass:           {ClassShader},
	ClassShaderTransparentMeter:           {ClassShader},
	ClassShaderTransparentPlasma:          {ClassShader},
	ClassGBXModel: {ClassModel},
}

// Parents returns c's ancestor chain, nearest-first, empty if c has none.
func Parents(c TagClass) []TagClass {
	return classParents[c]
}

// MatchesReference reports whether a tag of class actual satisfies a
// reference declared against wanted — either an exact match or wanted
// appearing in actual's parent chain.
func MatchesReference(wanted, actual TagClass) bool {
	if wanted == actual {
		return true
	}
	for _, p := range classParents[actual] {
		if p == wanted {
			return true
		}
	}
	return false
}

// ParseClass parses a four-character extension string (as found on a tag
// path, e.g. "model_collision_geometry" isn't a class code but "scenario"
// is looked up via ClassByExtension) back into its TagClass.
func ParseClass(extension string) (TagClass, bool) {
	c, ok := extensionToClass[strings.ToLower(extension)]
	return c, ok
}

var classToExtension map[TagClass]string

func init() {
	classToExtension = make(map[TagClass]string, len(extensionToClass))
	for ext, c := range extensionToClass {
		// Several extensions map to the same class only in one
		// direction (none do here), so last-write-wins is fine.
		classToExtension[c] = ext
	}
}

// ExtensionForClass returns the canonical on-disk extension for a class
// code, the inverse of ParseClass.
func ExtensionForClass(c TagClass) (string, bool) {
	ext, ok := classToExtension[c]
	return ext, ok
}

var extensionToClass = map[string]TagClass{
	"actor_variant":            ClassActorVariant,
	"actor":                    ClassActor,
	"antenna":                  ClassAntenna,
	"model_animations":         ClassModelAnimations,
	"biped":                    ClassBiped,
	"bitmap":                   ClassBitmap,
	"spheroid":                 ClassSpheroid,
	"contrail":                 ClassContrailSystem,
	"color_table":              ClassColorTable,
	"damage_effect":            ClassDamageEffect,
	"decal":                    ClassDecal,
	"detail_object_collection": ClassDetailObjectCollection,
	"device_control":           ClassDeviceControl,
	"device_light_fixture":     ClassDeviceLightFixture,
	"device_machine":           ClassDeviceMachine,
	"device":                   ClassDevice,
	"dialogue":                 ClassDialogue,
	"effect":                   ClassEffect,
	"equipment":                ClassEquipment,
	"flag":                     ClassFlag,
	"fog":                      ClassFog,
	"font":                     ClassFont,
	"gbxmodel":                 ClassGBXModel,
	"model":                    ClassModel,
	"glow":                     ClassGlow,
	"grenade_hud_interface":    ClassGrenadeHUDInterface,
	"hud_globals":              ClassHUDGlobals,
	"item":                     ClassItem,
	"item_collection":          ClassItemCollection,
	"lens_flare":               ClassLens,
	"light":                    ClassLight,
	"light_volume":             ClassLightVolume,
	"lightning":                ClassLightning,
	"material_effects":         ClassMaterialEffects,
	"meter":                    ClassMeter,
	"object":                   ClassObject,
	"particle_system":          ClassParticleSystem,
	"particle":                 ClassParticle,
	"physics":                  ClassPhysics,
	"placeholder":              ClassPlaceholder,
	"point_physics":            ClassPointPhysics,
	"projectile":               ClassProjectile,
	"scenario_structure_bsp":   ClassScenarioStructureBSP,
	"scenario":                 ClassScenario,
	"shader_transparent_chicago":          ClassShaderTransparentChicago,
	"shader_transparent_chicago_extended": ClassShaderTransparentChicagoExtended,
	"shader_environment":                  ClassShaderEnvironment,
	"shader_transparent_glass":            ClassShaderTransparentGlass,
	"shader":                              ClassShader,
	"sky":                                 ClassSky,
	"shader_transparent_meter":            ClassShaderTransparentMeter,
	"sound":                               ClassSound,
	"sound_environment":                   ClassSoundEnvironment,
	"shader_model":                        ClassShaderModel,
	"shader_transparent_generic":          ClassShaderTransparentGeneric,
	"ui_widget_collection":                ClassUIWidgetCollection,
	"shader_transparent_plasma":           ClassShaderTransparentPlasma,
	"sound_scenery":                       ClassSoundScenery,
	"string_list":                         ClassStringList,
	"shader_transparent_water":            ClassShaderTransparentWater,
	"tag_collection":                      ClassTagCollection,
	"camera_track":                        ClassCameraTrack,
	"unicode_string_list":                 ClassUnicodeStringList,
	"unit_hud_interface":                  ClassUnitHUDInterface,
	"unit":                                ClassUnit,
	"virtual_keyboard":                    ClassVirtualKeyboard,
	"vehicle":                             ClassVehicle,
	"weapon_hud_interface":                ClassWeaponHUDInterface,
	"weapon":                              ClassWeapon,
	"wind":                                ClassWind,
	"weather_particle_system":             ClassWeatherParticleSystem,
}
